package logger

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Log доступен сразу после импорта, Init только перенастраивает его.
var Log = logrus.New()

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// WithRoom возвращает запись лога с ключом чата.
func WithRoom(roomKey string) *logrus.Entry {
	return Log.WithField("room", roomKey)
}

// WithReport возвращает запись лога с идентификатором объявления.
func WithReport(reportID uuid.UUID) *logrus.Entry {
	return Log.WithField("report_id", reportID.String())
}

// WithUser возвращает запись лога с идентификатором пользователя.
func WithUser(userID uuid.UUID) *logrus.Entry {
	return Log.WithField("user_id", userID.String())
}
