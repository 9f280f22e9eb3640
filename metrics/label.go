package metrics

// Label 指标标签，用于为指标添加维度信息
//
// 标签值应当相对稳定，服务名可以作为标签，连接串、用户名不可以。
type Label struct {
	Key   string
	Value string
}

// L 便捷构造函数，创建一个 Label 实例
func L(key, value string) Label {
	return Label{Key: key, Value: value}
}
