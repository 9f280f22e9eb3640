package connector

// Metric 名称常量
const (
	// MetricConnectTotal 连接尝试总数 (Counter)
	MetricConnectTotal = "dbbridge_connect_total"

	// MetricConnectDuration 连接耗时 (Histogram)，单位秒
	MetricConnectDuration = "dbbridge_connect_duration_seconds"
)

// Label 名称常量
const (
	// LabelService 逻辑服务名
	LabelService = "service"

	// LabelOutcome 结果: success | error
	LabelOutcome = "outcome"
)
