package config

import _ "embed"

// DefaultConfigYAML 内置默认配置，外部配置文件缺失时也能直接启动
//
//go:embed default_config.yaml
var DefaultConfigYAML []byte
