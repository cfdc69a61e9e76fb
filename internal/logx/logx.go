/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logx is a thin Debugf/Printf-shaped wrapper over log/slog,
// so call sites read the way the rest of the module's sparse,
// fmt.Printf-style logging does, without hand-rolling a sink.
package logx

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger wraps a *slog.Logger with printf-style call sites.
type Logger struct {
	l *slog.Logger
}

// New builds a Logger writing text-formatted records to w.
func New(w *os.File) *Logger {
	return &Logger{l: slog.New(slog.NewTextHandler(w, nil))}
}

// Default returns a Logger over slog's default handler.
func Default() *Logger {
	return &Logger{l: slog.Default()}
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.l.Debug(fmt.Sprintf(format, args...))
}

// Printf logs at info level, matching the teacher's plain
// fmt.Printf-for-notable-events call sites.
func (l *Logger) Printf(format string, args ...any) {
	l.l.Info(fmt.Sprintf(format, args...))
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.l.Error(fmt.Sprintf(format, args...))
}
