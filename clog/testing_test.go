package clog

import "bytes"

// withBuffer 是测试专用选项，将日志输出写入指定的缓冲区
func withBuffer(buf *bytes.Buffer) Option {
	return func(o *options) {
		o.buffer = buf
	}
}

func newBufferLogger(buf *bytes.Buffer, level string, opts ...Option) Logger {
	opts = append(opts, withBuffer(buf))
	return Must(&Config{Level: level, Format: "json", Output: "buffer"}, opts...)
}
