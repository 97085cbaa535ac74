package main

import (
	"flag"

	"github.com/utrading/utrading-dex-monitor/config"
	"github.com/utrading/utrading-dex-monitor/internal/dal"
)

// 生成 gorm-gen 查询代码，输出到 internal/dal/gen
func main() {
	var configFile string
	var outPath string
	flag.StringVar(&configFile, "config", "cfg.toml", "config file path")
	flag.StringVar(&outPath, "out", "./internal/dal/gen", "generated code output path")
	flag.Parse()

	if err := config.Init(configFile); err != nil {
		panic(err)
	}

	dal.InitMysqlDB(config.Get().MySQL)
	dal.GenExecute(outPath, dal.MySQL())
}
