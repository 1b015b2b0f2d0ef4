package worker

import (
	"github.com/spec-kit/docdesk/internal/service"
)

// StartNoticeWorker registers notice handlers and returns a stop function.
func StartNoticeWorker(noticeService *service.NoticeService) func() {
	if noticeService == nil {
		return func() {}
	}
	return noticeService.RegisterHandlers()
}
