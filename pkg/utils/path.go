// Package utils 提供路径等通用工具函数
package utils

import (
	"os"
	"path/filepath"
)

// GetProjectRoot 获取项目根目录
//
// 以当前工作目录为根；部署时二进制从数据目录旁启动，
// 相对路径都会解析到该目录之下。
func GetProjectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// ResolveDataPath 将相对数据路径解析为绝对路径
func ResolveDataPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(GetProjectRoot(), path)
}

// EnsureDir 确保目录存在，如果不存在则创建
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
