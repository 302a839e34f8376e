package logger

import (
	"go.uber.org/zap"
)

// NewLogger 로거 생성.
// debug 모드에서는 개발용 콘솔 로거, 아니면 JSON 출력의 프로덕션 로거를 쓴다.
func NewLogger(debug bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("service", "livestock-sync")), nil
}
