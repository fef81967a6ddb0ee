package pipeline_test

import "github.com/okian/litterpredict/pkg/logger"

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}
