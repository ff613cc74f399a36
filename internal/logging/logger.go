/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logging is a small logrus-backed structured logger, trimmed from
// nabbar-golib/logger down to the level/fields/std-bridge subset this
// repository's connection and request logging actually needs.
package logging

import (
	"log"
	"os"

	"github.com/sirupsen/logrus"
)

// Level mirrors logrus' severity ordering under repository-local names so
// call sites never import logrus directly.
type Level uint8

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

func (l Level) toLogrus() logrus.Level {
	switch l {
	case PanicLevel:
		return logrus.PanicLevel
	case FatalLevel:
		return logrus.FatalLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// Logger is the structured logging surface used across the repository.
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level

	WithField(key string, val interface{}) Logger
	WithFields(fields map[string]interface{}) Logger

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// GetStdLogger returns a standard library *log.Logger bridged onto this
	// logger at the given level, for wiring into http.Server.ErrorLog the
	// way nabbar-golib/httpserver does with liblog.GetLogger.
	GetStdLogger(lvl Level) *log.Logger
}

type logger struct {
	entry *logrus.Entry
}

// New builds a Logger writing structured text to stderr.
func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return &logger{entry: logrus.NewEntry(l)}
}

func (o *logger) SetLevel(lvl Level) {
	o.entry.Logger.SetLevel(lvl.toLogrus())
}

func (o *logger) GetLevel() Level {
	switch o.entry.Logger.GetLevel() {
	case logrus.PanicLevel:
		return PanicLevel
	case logrus.FatalLevel:
		return FatalLevel
	case logrus.ErrorLevel:
		return ErrorLevel
	case logrus.WarnLevel:
		return WarnLevel
	case logrus.InfoLevel:
		return InfoLevel
	default:
		return DebugLevel
	}
}

func (o *logger) WithField(key string, val interface{}) Logger {
	return &logger{entry: o.entry.WithField(key, val)}
}

func (o *logger) WithFields(fields map[string]interface{}) Logger {
	return &logger{entry: o.entry.WithFields(fields)}
}

func (o *logger) Debugf(format string, args ...interface{}) { o.entry.Debugf(format, args...) }
func (o *logger) Infof(format string, args ...interface{})  { o.entry.Infof(format, args...) }
func (o *logger) Warnf(format string, args ...interface{})  { o.entry.Warnf(format, args...) }
func (o *logger) Errorf(format string, args ...interface{}) { o.entry.Errorf(format, args...) }

func (o *logger) GetStdLogger(lvl Level) *log.Logger {
	w := o.entry.Logger.WriterLevel(lvl.toLogrus())
	return log.New(w, "", 0)
}
