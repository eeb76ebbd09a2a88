package rule

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxFilenameLen = 255

// registerDomainRules 注册领域校验规则，在 validator 初始化时调用.
func registerDomainRules(v *validator.Validate) {
	// filename: 纯文件名，不允许路径分隔符与控制字符
	_ = v.RegisterValidation("filename", func(fl validator.FieldLevel) bool {
		return ValidFilename(fl.Field().String())
	})

	// sha256hex: 64 位小写十六进制摘要
	_ = v.RegisterValidation("sha256hex", func(fl validator.FieldLevel) bool {
		return ValidSHA256Hex(fl.Field().String())
	})
}

// ValidFilename 校验 name 是否为合法的纯文件名：
// 非空、不超过 255 字节、不含路径分隔符和 NUL、不为 "." 或 "..".
func ValidFilename(name string) bool {
	if name == "" || len(name) > maxFilenameLen {
		return false
	}

	if name == "." || name == ".." {
		return false
	}

	if strings.ContainsAny(name, "/\\\x00") {
		return false
	}

	return true
}

// ValidSHA256Hex 校验 s 是否为 64 位小写十六进制 SHA-256 摘要.
func ValidSHA256Hex(s string) bool {
	if len(s) != 64 {
		return false
	}

	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}

	return true
}
