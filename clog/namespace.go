package clog

import (
	"log/slog"
	"strings"
)

// NamespaceKey 是日志中命名空间的字段名
const NamespaceKey = "namespace"

func namespaceString(o *options) string {
	if o == nil || len(o.namespaceParts) == 0 {
		return ""
	}
	return strings.Join(o.namespaceParts, ".")
}

// addNamespaceField 将命名空间字段追加到 attrs 中
func addNamespaceField(o *options, attrs *[]slog.Attr) {
	if ns := namespaceString(o); ns != "" {
		*attrs = append(*attrs, slog.String(NamespaceKey, ns))
	}
}
