package policy

import "strings"

// Violation 是一条未通过的约束
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError 在任何网络调用之前返回，列出所有未通过的约束
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

// TooLarge 只要有一个文件超过大小上限，就按413处理
func (e *ValidationError) TooLarge() bool {
	for _, v := range e.Violations {
		if v.Rule == RuleSize {
			return true
		}
	}
	return false
}

// Has 判断某个字段是否违反了某条规则
func (e *ValidationError) Has(field, rule string) bool {
	for _, v := range e.Violations {
		if v.Field == field && v.Rule == rule {
			return true
		}
	}
	return false
}
