package connector

// Options 有序的连接选项，迭代顺序即插入顺序。
//
// 零值可用，表示没有选项。Options 创建后不可修改。
type Options struct {
	keys   []string
	values map[string]string
}

// NewOptions 按 key, value 成对构造 Options。
// 参数个数为奇数时最后一个 key 的值为空串；重复的 key 保留首次出现的位置，值取最后一次。
func NewOptions(kv ...string) Options {
	var o Options
	for i := 0; i < len(kv); i += 2 {
		value := ""
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		o.set(kv[i], value)
	}
	return o
}

func (o *Options) set(key, value string) {
	if o.values == nil {
		o.values = make(map[string]string)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Len 返回选项数量
func (o Options) Len() int {
	return len(o.keys)
}

// Keys 按插入顺序返回所有 key 的副本
func (o Options) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Get 返回 key 对应的值
func (o Options) Get(key string) (string, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Each 按插入顺序遍历，fn 返回 false 时停止
func (o Options) Each(fn func(key, value string) bool) {
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// Map 返回选项的 map 副本
func (o Options) Map() map[string]string {
	m := make(map[string]string, len(o.keys))
	for _, k := range o.keys {
		m[k] = o.values[k]
	}
	return m
}

// Descriptor 一个数据库端点的不可变描述。
//
// 只能通过 NewDescriptor 构造，字段均通过访问方法读取。
// 字段可以是明文，也可以是 secret 信封格式的密文，由 Factory 决定是否解密。
type Descriptor struct {
	driver   string
	host     string
	port     string
	database string
	username string
	password string
	options  Options
}

// DriverKind 驱动类型，如 mysql、pgsql、sqlite
func (d Descriptor) DriverKind() string { return d.driver }

// Host 主机地址
func (d Descriptor) Host() string { return d.host }

// Port 端口，空串表示使用驱动默认端口
func (d Descriptor) Port() string { return d.port }

// Database 库名，空串表示不指定
func (d Descriptor) Database() string { return d.database }

// Username 用户名
func (d Descriptor) Username() string { return d.username }

// Password 密码
func (d Descriptor) Password() string { return d.password }

// Options 连接选项
func (d Descriptor) Options() Options { return d.options }

// String 返回未经变换的连接串，不包含用户名和密码，可直接用于日志。
func (d Descriptor) String() string {
	dsn, _ := BuildDSN(d, Identity)
	return dsn
}
