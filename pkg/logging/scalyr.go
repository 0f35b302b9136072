package logging

import (
	"encoding/json"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufferPool = buffer.NewPool()

// ScalyrEncoder writes one flat JSON object per entry, with fields merged into
// the top level next to timestamp, level and message.
type ScalyrEncoder struct {
	zapcore.Encoder
	config  zapcore.EncoderConfig
	context *zapcore.MapObjectEncoder
}

// NewScalyrEncoder creates a new Scalyr-compatible encoder
func NewScalyrEncoder(config zapcore.EncoderConfig) zapcore.Encoder {
	return &ScalyrEncoder{
		Encoder: zapcore.NewJSONEncoder(config),
		config:  config,
		context: zapcore.NewMapObjectEncoder(),
	}
}

// EncodeEntry encodes a log entry in Scalyr-compatible format
func (e *ScalyrEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	// Fields attached with logger.With(...) come first so per-call fields win.
	enc := zapcore.NewMapObjectEncoder()
	for k, v := range e.context.Fields {
		enc.Fields[k] = v
	}
	for _, field := range fields {
		field.AddTo(enc)
	}

	logObj := make(map[string]interface{}, len(enc.Fields)+8)
	for k, v := range enc.Fields {
		switch val := v.(type) {
		case time.Duration:
			logObj[k] = val.String()
		case time.Time:
			logObj[k] = val.Format(time.RFC3339Nano)
		default:
			logObj[k] = val
		}
	}

	logObj["timestamp"] = entry.Time.Format(time.RFC3339Nano)
	logObj["level"] = entry.Level.String()
	logObj["message"] = entry.Message
	if entry.LoggerName != "" {
		logObj["logger"] = entry.LoggerName
	}
	if entry.Caller.Defined {
		logObj["file"] = entry.Caller.File
		logObj["line"] = entry.Caller.Line
		logObj["function"] = entry.Caller.Function
	}
	if entry.Stack != "" {
		logObj["stack"] = entry.Stack
	}

	data, err := json.Marshal(logObj)
	if err != nil {
		return nil, err
	}

	buf := bufferPool.Get()
	buf.AppendBytes(data)
	buf.AppendString(zapcore.DefaultLineEnding)
	return buf, nil
}

// AddString keeps context fields in the map encoder as well as the embedded
// JSON encoder so that logger.With(...) survives EncodeEntry.
func (e *ScalyrEncoder) AddString(key, value string) {
	e.context.AddString(key, value)
	e.Encoder.AddString(key, value)
}

// AddInt64 mirrors AddString for integer context fields.
func (e *ScalyrEncoder) AddInt64(key string, value int64) {
	e.context.AddInt64(key, value)
	e.Encoder.AddInt64(key, value)
}

// AddBool mirrors AddString for boolean context fields.
func (e *ScalyrEncoder) AddBool(key string, value bool) {
	e.context.AddBool(key, value)
	e.Encoder.AddBool(key, value)
}

// Clone creates a copy of the encoder
func (e *ScalyrEncoder) Clone() zapcore.Encoder {
	ctx := zapcore.NewMapObjectEncoder()
	for k, v := range e.context.Fields {
		ctx.Fields[k] = v
	}
	return &ScalyrEncoder{
		Encoder: e.Encoder.Clone(),
		config:  e.config,
		context: ctx,
	}
}
