// Copyright (c) 2026, The UAVNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package logger is the leveled console logger of the simulator, backed by zap.
package logger

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the log-level for logging what happens in the simulation as a whole, or to watch an
// individual vehicle.
type Level int8

const (
	MicroLevel   Level = 7
	TraceLevel   Level = 6
	DebugLevel   Level = 5
	InfoLevel    Level = 4
	NoteLevel    Level = 3
	WarnLevel    Level = 2
	ErrorLevel   Level = 1
	PanicLevel   Level = 0
	FatalLevel   Level = -1
	OffLevel     Level = -2
	MinLevel           = OffLevel
	DefaultLevel       = InfoLevel
)

type StdoutCallback interface {
	OnStdout()
}

var (
	cfg             zap.Config
	zaplogger       *zap.Logger
	currentLevel    = DefaultLevel
	isLogToTerminal bool
	cbStdout        StdoutCallback
	outputLock      sync.Mutex
)

func init() {
	if o, err := os.Stdout.Stat(); err == nil && (o.Mode()&os.ModeCharDevice) == os.ModeCharDevice {
		isLogToTerminal = true
	}

	cfg = zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.DebugLevel),
		Encoding:         "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:  "message",
			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,
			EncodeTime:  zapcore.ISO8601TimeEncoder,
		},
	}
	rebuildLoggerFromCfg()
}

// zapLevel maps a simulator level onto the coarser zap levels.
func zapLevel(level Level) zapcore.Level {
	switch {
	case level >= DebugLevel:
		return zapcore.DebugLevel
	case level >= NoteLevel:
		return zapcore.InfoLevel
	case level == WarnLevel:
		return zapcore.WarnLevel
	case level == ErrorLevel:
		return zapcore.ErrorLevel
	case level == PanicLevel:
		return zapcore.PanicLevel
	default:
		return zapcore.FatalLevel
	}
}

func SetLevel(lv Level) {
	currentLevel = lv
}

func GetLevel() Level {
	return currentLevel
}

// SetStdoutCallback registers the console to redraw its prompt after log output.
func SetStdoutCallback(cb StdoutCallback) {
	cbStdout = cb
}

// TraceError logs the current goroutine stack followed by the error message.
func TraceError(format string, args ...interface{}) {
	Error(string(debug.Stack()))
	Errorf(format, args...)
}

// SetOutput replaces the zap output paths, e.g. []string{"stderr", "uavns.log"}.
func SetOutput(outputs []string) {
	outputLock.Lock()
	defer outputLock.Unlock()
	cfg.OutputPaths = outputs
	rebuildLoggerFromCfg()
}

func rebuildLoggerFromCfg() {
	newLogger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	if zaplogger != nil {
		_ = zaplogger.Sync()
	}
	zaplogger = newLogger
}

func getMessage(template string, fmtArgs []interface{}) string {
	switch {
	case len(fmtArgs) == 0:
		return template
	case template != "":
		return fmt.Sprintf(template, fmtArgs...)
	}
	if str, ok := fmtArgs[0].(string); ok && len(fmtArgs) == 1 {
		return str
	}
	return fmt.Sprint(fmtArgs...)
}

func Log(level Level, msg interface{}) {
	if level <= currentLevel {
		logAlways(level, getMessage("", []interface{}{msg}))
	}
}

func Logf(level Level, format string, args []interface{}) {
	if level <= currentLevel {
		logAlways(level, getMessage(format, args))
	}
}

// writeConsole runs write with the console line cleared, and lets the console restore its prompt afterwards.
func writeConsole(write func()) {
	outputLock.Lock()
	defer outputLock.Unlock()

	if isLogToTerminal {
		_, _ = os.Stdout.WriteString("\033[2K\r")
	}
	write()
	if isLogToTerminal && cbStdout != nil {
		cbStdout.OnStdout()
	}
}

func logAlways(level Level, msg string) {
	stamp := time.Now().Format("2006-01-02 15:04:05.000")
	writeConsole(func() {
		zaplogger.Log(zapLevel(level), stamp+" - "+msg)
	})
}

// Println writes a line of console output to stdout.
func Println(msg string) {
	writeConsole(func() {
		_, _ = os.Stdout.WriteString(msg + "\n")
	})
}

func Tracef(format string, args ...interface{}) {
	Logf(TraceLevel, format, args)
}

func Debugf(format string, args ...interface{}) {
	Logf(DebugLevel, format, args)
}

func Infof(format string, args ...interface{}) {
	Logf(InfoLevel, format, args)
}

func Notef(format string, args ...interface{}) {
	Logf(NoteLevel, format, args)
}

func Warnf(format string, args ...interface{}) {
	Logf(WarnLevel, format, args)
}

func Errorf(format string, args ...interface{}) {
	Logf(ErrorLevel, format, args)
}

// Panicf logs at panic level and then panics with the formatted message.
func Panicf(format string, args ...interface{}) {
	msg := getMessage(format, args)
	logAlways(PanicLevel, msg)
	panic(msg)
}

// Fatalf logs at fatal level and exits the process.
func Fatalf(format string, args ...interface{}) {
	logAlways(FatalLevel, getMessage(format, args))
	_ = zaplogger.Sync()
	os.Exit(1)
}

func Error(args ...interface{}) {
	Log(ErrorLevel, getMessage("", args))
}

func Panic(args ...interface{}) {
	Panicf("", args...)
}

func Fatal(args ...interface{}) {
	Fatalf("", args...)
}

func PanicIfError(err error, args ...interface{}) {
	if len(args) == 0 {
		args = []interface{}{err}
	}
	if err != nil {
		Panic(args...)
	}
}

func FatalIfError(err error, args ...interface{}) {
	if len(args) == 0 {
		args = []interface{}{err}
	}
	if err != nil {
		Fatal(args...)
	}
}

type assertLogger struct{}

func (t assertLogger) Errorf(format string, args ...interface{}) {
	Panicf(format, args...)
}

func AssertEqual(expected, actual interface{}, msgAndArgs ...interface{}) bool {
	return assert.Equal(assertLogger{}, expected, actual, msgAndArgs...)
}

func AssertNil(object interface{}, msgAndArgs ...interface{}) bool {
	return assert.Nil(assertLogger{}, object, msgAndArgs...)
}

func AssertNotNil(object interface{}, msgAndArgs ...interface{}) bool {
	return assert.NotNil(assertLogger{}, object, msgAndArgs...)
}

func AssertTrue(value bool, msgAndArgs ...interface{}) bool {
	return assert.True(assertLogger{}, value, msgAndArgs...)
}

func AssertFalse(value bool, msgAndArgs ...interface{}) bool {
	return assert.False(assertLogger{}, value, msgAndArgs...)
}
