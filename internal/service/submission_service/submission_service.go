package submission_service

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

func (sub *SubmissionService) Start() {
	// validate fields
	for _, field := range []struct {
		field any
		name  string
	}{
		{sub.Records, "record service"}, {sub.ContestService, "contest service"},
		{sub.UserService, "user service"},
	} {
		if field.field == nil {
			panic(fmt.Sprintf("submission service expects non-nil %v", field.name))
		}
	}

	sub.logger = logrus.WithFields(
		logrus.Fields{
			"from": fromSubmissionService,
		},
	)

	sub.logger.Info("initialized submission service")
}

func (sub *SubmissionService) getLogger() *logrus.Entry {
	if sub.logger == nil {
		return logrus.WithField("from", fromSubmissionService)
	}
	return sub.logger
}
