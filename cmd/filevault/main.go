// Package main 启动应用程序
package main

import "github.com/yeisme/filevault/pkg/cmd"

//	@title			FileVault API
//	@version		1.0
//	@description	FileVault 是一个分片上传文件存储服务，提供断点续传、文件管理、回收站与维护任务调度等功能。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
