package policy

import (
	"errors"
	"fmt"
	"mime"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

const (
	MaxTitleLength       = 50
	MaxDescriptionLength = 200

	DefaultMaxImageBytes int64 = 10 << 20
	DefaultMaxVideoBytes int64 = 100 << 20

	// multipart边界、字段头、title/description本身的余量
	multipartOverhead int64 = 1 << 20
)

// 违反的规则名
const (
	RuleRequired = "required"
	RuleMax      = "max"
	RuleType     = "type"
	RuleSize     = "size"
)

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var videoTypes = map[string]bool{
	"video/mp4":       true,
	"video/avi":       true,
	"video/x-msvideo": true,
	"video/mpeg":      true,
	"video/quicktime": true,
}

// 浏览器和操作系统上报的非标准写法
var typeAliases = map[string]string{
	"image/jpg":     "image/jpeg",
	"image/pjpeg":   "image/jpeg",
	"video/msvideo": "video/x-msvideo",
}

// File 描述一个待上传文件的元信息，不包含内容
type File struct {
	Filename    string
	ContentType string
	Size        int64
}

// Submission 是一次上传表单：文字字段 + 两个文件（缺失为nil）
type Submission struct {
	Title       string `form:"title" validate:"notblank,max=50"`
	Description string `form:"description" validate:"notblank,max=200"`
	Video       *File  `validate:"-"`
	Thumbnail   *File  `validate:"-"`
}

// Limits 是可配置的文件大小上限
type Limits struct {
	ImageBytes int64
	VideoBytes int64
}

// DefaultLimits 图片10MB，视频100MB
var DefaultLimits = Limits{ImageBytes: DefaultMaxImageBytes, VideoBytes: DefaultMaxVideoBytes}

// MaxRequestBytes 是传输层的请求体上限
func (l Limits) MaxRequestBytes() int64 {
	return l.ImageBytes + l.VideoBytes + multipartOverhead
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 错误里的字段名使用表单字段名，而不是Go字段名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Check 使用默认上限校验
func Check(s Submission) error {
	return DefaultLimits.Check(s)
}

// Check 校验一次上传：1、title/description长度 2、文件是否存在 3、类型白名单 4、大小上限
// 所有违反项一次性返回，不会在第一个错误处停下
func (l Limits) Check(s Submission) error {
	var violations []Violation

	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			violations = append(violations, textViolation(fe))
		}
	}

	violations = append(violations, checkFile("thumbnail", s.Thumbnail, imageTypes, l.ImageBytes, "a JPEG or PNG image")...)
	violations = append(violations, checkFile("video", s.Video, videoTypes, l.VideoBytes, "an MP4, AVI, MPEG or MOV video")...)

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

func textViolation(fe validator.FieldError) Violation {
	switch fe.Tag() {
	case "max":
		return Violation{
			Field:   fe.Field(),
			Rule:    RuleMax,
			Message: fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()),
		}
	default:
		return Violation{
			Field:   fe.Field(),
			Rule:    RuleRequired,
			Message: fmt.Sprintf("%s is required", fe.Field()),
		}
	}
}

func checkFile(field string, f *File, allowed map[string]bool, limit int64, want string) []Violation {
	if f == nil || f.Size <= 0 {
		return []Violation{{
			Field:   field,
			Rule:    RuleRequired,
			Message: fmt.Sprintf("%s file is required", field),
		}}
	}

	var out []Violation
	if !allowed[NormalizeContentType(f.ContentType)] {
		out = append(out, Violation{
			Field:   field,
			Rule:    RuleType,
			Message: fmt.Sprintf("%s must be %s", field, want),
		})
	}
	if f.Size > limit {
		out = append(out, Violation{
			Field:   field,
			Rule:    RuleSize,
			Message: fmt.Sprintf("%s must be at most %s", field, humanBytes(limit)),
		})
	}
	return out
}

// NormalizeContentType 去掉参数、转小写、折叠别名
func NormalizeContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}
	ct = strings.ToLower(ct)
	if alias, ok := typeAliases[ct]; ok {
		return alias
	}
	return ct
}

// DetectContentType 优先相信客户端声明的类型；声明缺失或是octet-stream时，才根据文件头嗅探
func DetectContentType(declared string, head []byte) string {
	ct := NormalizeContentType(declared)
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if len(head) == 0 {
		return ct
	}
	return NormalizeContentType(mimetype.Detect(head).String())
}

// SniffLen 是嗅探时需要读取的文件头长度
const SniffLen = 3072

func humanBytes(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}
