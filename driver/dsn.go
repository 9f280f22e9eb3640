package driver

import (
	"net"
	"net/url"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"
)

const (
	defaultMySQLPort    = "3306"
	defaultPostgresPort = "5432"
	sqliteMemory        = ":memory:"

	optionCharset = "charset"
)

// mysqlDSN 转换为 go-sql-driver 格式，选项原样作为连接参数
func (t *target) mysqlDSN() string {
	return t.mysqlConfig().FormatDSN()
}

func (t *target) mysqlConfig() *mysqldrv.Config {
	cfg := mysqldrv.NewConfig()
	cfg.User = t.username
	cfg.Passwd = t.password
	cfg.Net = "tcp"
	cfg.DBName = t.database

	port := t.port
	if port == "" {
		port = defaultMySQLPort
	}
	cfg.Addr = net.JoinHostPort(t.host, port)

	if _, ok := t.options.Get("parseTime"); !ok {
		cfg.ParseTime = true
	}
	if t.options.Len() > 0 {
		cfg.Params = t.options.Map()
	}
	return cfg
}

// postgresDSN 转换为 libpq keyword/value 格式，charset 映射为 client_encoding
func (t *target) postgresDSN() string {
	port := t.port
	if port == "" {
		port = defaultPostgresPort
	}

	parts := []string{
		"host=" + pqQuote(t.host),
		"port=" + pqQuote(port),
	}
	if t.username != "" {
		parts = append(parts, "user="+pqQuote(t.username))
	}
	if t.password != "" {
		parts = append(parts, "password="+pqQuote(t.password))
	}
	if t.database != "" {
		parts = append(parts, "dbname="+pqQuote(t.database))
	}

	t.options.Each(func(key, value string) bool {
		if key == optionCharset {
			key, value = "client_encoding", postgresEncoding(value)
		}
		parts = append(parts, key+"="+pqQuote(value))
		return true
	})
	return strings.Join(parts, " ")
}

// sqliteDSN 库名即文件路径，charset 对 SQLite 无意义，其余选项作为查询参数
func (t *target) sqliteDSN() string {
	path := t.database
	if path == "" {
		path = sqliteMemory
	}

	var params []string
	t.options.Each(func(key, value string) bool {
		if key != optionCharset {
			params = append(params, url.QueryEscape(key)+"="+url.QueryEscape(value))
		}
		return true
	})
	if len(params) == 0 {
		return path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// pqQuote 按 libpq 规则为值加引号，仅在需要时加
func pqQuote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

func postgresEncoding(charset string) string {
	switch strings.ToLower(charset) {
	case "utf8", "utf8mb4", "utf-8":
		return "UTF8"
	default:
		return charset
	}
}
