package clog

import "go.uber.org/zap"


//=========================================== Custom Log


/*
	NewCustomLog builds a named logger backed by zap, with a
	variadic Info/Warn/Error surface instead of printf-style formatting.
*/

func NewCustomLog(name string) *CustomLog {
	zapLogger, buildErr := zap.NewProduction()
	if buildErr != nil { zapLogger = zap.NewNop() }

	return &CustomLog{
		Name: name,
		sugar: zapLogger.Sugar().Named(name),
	}
}

func (cLog *CustomLog) Debug(msg ...interface{}) { cLog.sugar.Debug(msg...) }
func (cLog *CustomLog) Info(msg ...interface{}) { cLog.sugar.Info(msg...) }
func (cLog *CustomLog) Warn(msg ...interface{}) { cLog.sugar.Warn(msg...) }
func (cLog *CustomLog) Error(msg ...interface{}) { cLog.sugar.Error(msg...) }
func (cLog *CustomLog) Fatal(msg ...interface{}) { cLog.sugar.Fatal(msg...) }

func (cLog *CustomLog) Sync() error { return cLog.sugar.Sync() }
