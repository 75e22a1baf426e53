// Package notify delivers operator alerts through Telegram.
package notify
