package sms

import "github.com/sirupsen/logrus"

// Sender 短信投递协作方：fire-and-forget，无回执。
type Sender interface {
	Deliver(phone, message string)
}

// LogSender 开发环境实现：只打结构化日志，不出网。
// 生产环境替换为真实网关实现即可。
type LogSender struct {
	log *logrus.Logger
}

func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Deliver(phone, message string) {
	s.log.WithFields(logrus.Fields{
		"phone": phone,
	}).Info("sms delivered (log sender)")
}
