// Package applog provides tagged log helpers for the server and worker.
package applog

import "log"

func Info(msg string, args ...any) {
	log.Printf("[INFO] "+msg, args...)
}

func Error(msg string, args ...any) {
	log.Printf("[ERROR] "+msg, args...)
}

func Debug(msg string, args ...any) {
	log.Printf("[DEBUG] "+msg, args...)
}

func HTTP(msg string, args ...any) {
	log.Printf("[HTTP] "+msg, args...)
}

func Jobs(msg string, args ...any) {
	log.Printf("[JOBS] "+msg, args...)
}

func Startup(msg string, args ...any) {
	log.Printf("[STARTUP] "+msg, args...)
}

func Shutdown(msg string, args ...any) {
	log.Printf("[SHUTDOWN] "+msg, args...)
}
