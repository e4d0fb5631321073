package logger

import (
	"io"
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger 는 서버와 터미널 클라이언트가 공통으로 쓰는 최소 로거 인터페이스다.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields 는 구조화 로그를 위한 공통 필드 타입이다.
type Fields map[string]any

// Log 는 전역 로거 인스턴스다. Init 이 호출되지 않더라도 info 레벨로 동작한다.
var Log Logger = NewLogger("info", os.Stdout)

// Init 은 레벨 문자열로 전역 로거를 다시 만든다. 비어 있으면 info 를 쓴다.
func Init(level string) {
	InitWithWriter(level, os.Stdout)
}

// InitWithWriter 는 출력 대상을 지정해 전역 로거를 초기화한다.
// 터미널 클라이언트는 화면을 가리지 않도록 stderr 나 파일을 넘긴다.
func InitWithWriter(level string, w io.Writer) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	Log = NewLogger(level, w)
}

// NewLogger 는 주어진 레벨과 출력으로 gookit/slog 기반 JSON 로거를 생성한다.
func NewLogger(level string, w io.Writer) Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewIOWriterHandler(w, levels)
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// withServiceName 은 service_name 필드를 SERVICE_NAME 환경변수 기준으로 보강한다.
func withServiceName(fields Fields) Fields {
	if fields == nil {
		fields = Fields{}
	}
	if _, ok := fields["service_name"]; !ok {
		if sn := os.Getenv("SERVICE_NAME"); sn != "" {
			fields["service_name"] = sn
		}
	}
	return fields
}

func withFields(fields Fields) (*slog.Record, bool) {
	lg, ok := Log.(*slog.Logger)
	if !ok {
		return nil, false
	}
	return lg.WithFields(slog.M(withServiceName(fields))), true
}

// InfoWithFields 는 request_id, conversation_id 등 구조화 필드를 포함한 로그를 남긴다.
func InfoWithFields(msg string, fields Fields) {
	if r, ok := withFields(fields); ok {
		r.Info(msg)
		return
	}
	Log.Info(msg)
}

func DebugWithFields(msg string, fields Fields) {
	if r, ok := withFields(fields); ok {
		r.Debug(msg)
		return
	}
	Log.Debug(msg)
}

func WarnWithFields(msg string, fields Fields) {
	if r, ok := withFields(fields); ok {
		r.Warn(msg)
		return
	}
	Log.Warn(msg)
}

func ErrorWithFields(msg string, fields Fields) {
	if r, ok := withFields(fields); ok {
		r.Error(msg)
		return
	}
	Log.Error(msg)
}
