package performance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"techrank/internal/bootstrap/logging"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/ports"
)

type AssignmentNotice struct {
	UserID    string `json:"userId" validate:"required"`
	CompanyID string `json:"companyId" validate:"required"`
	ServiceID string `json:"serviceId" validate:"required"`
	// ServiceRef is the human readable job number shown in the message.
	ServiceRef string `json:"serviceRef"`
	// PreviousUserID is set for reassignments.
	PreviousUserID string         `json:"previousUserId"`
	Data           map[string]any `json:"data"`
}

type AnnounceInput struct {
	CompanyID string `json:"companyId" validate:"required"`
	BranchID  string `json:"branchId"`
	Title     string `json:"title" validate:"required,max=200"`
	Message   string `json:"message" validate:"required,max=2000"`
	SentBy    string `json:"sentBy"`
}

type NotificationQuery struct {
	CompanyID  string `json:"companyId" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
	UnreadOnly bool   `json:"unreadOnly"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

type NotificationPage struct {
	Items      []domain.Notification `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}

// NotifyAssigned never fails the caller; the bool reports whether the
// notification was stored.
func (s *Service) NotifyAssigned(ctx context.Context, notice AssignmentNotice) (domain.Notification, bool) {
	return s.notifyAssignment(ctx, domain.NotificationAssigned, notice)
}

func (s *Service) NotifyReassigned(ctx context.Context, notice AssignmentNotice) (domain.Notification, bool) {
	return s.notifyAssignment(ctx, domain.NotificationReassigned, notice)
}

func (s *Service) notifyAssignment(ctx context.Context, kind domain.NotificationType, notice AssignmentNotice) (domain.Notification, bool) {
	logCtx := s.logCtx(ctx, notice.CompanyID, notice.UserID)
	if err := s.ready(ctx); err != nil {
		logFailure(logCtx, "notification skipped", err, slog.String("type", string(kind)))
		return domain.Notification{}, false
	}
	if err := s.validate.Struct(notice); err != nil {
		s.metrics.Notification(string(kind), "invalid")
		logFailure(logCtx, "notification skipped", err, slog.String("type", string(kind)))
		return domain.Notification{}, false
	}

	ref := strings.TrimSpace(notice.ServiceRef)
	if ref == "" {
		ref = notice.ServiceID
	}

	data := make(map[string]any, len(notice.Data)+2)
	for k, v := range notice.Data {
		data[k] = v
	}
	data["serviceId"] = notice.ServiceID
	if notice.ServiceRef != "" {
		data["serviceRef"] = notice.ServiceRef
	}

	n := domain.Notification{
		UserID:    notice.UserID,
		CompanyID: notice.CompanyID,
		Type:      kind,
		Data:      data,
	}
	switch kind {
	case domain.NotificationReassigned:
		n.Title = "Job reassigned to you"
		n.Message = fmt.Sprintf("Service %s has been reassigned to you.", ref)
		if notice.PreviousUserID != "" {
			data["previousUserId"] = notice.PreviousUserID
		}
	default:
		n.Title = "New job assigned"
		n.Message = fmt.Sprintf("Service %s has been assigned to you.", ref)
	}
	return s.dispatch(ctx, n)
}

// dispatch stores the notification and pushes it to live subscribers.
// Failures are logged and counted, never returned.
func (s *Service) dispatch(ctx context.Context, n domain.Notification) (domain.Notification, bool) {
	logCtx := s.logCtx(ctx, n.CompanyID, n.UserID)

	n.ID = newID()
	n.IsRead = false
	n.ReadAt = nil
	n.CreatedAt = s.nowUTC()
	if n.Data == nil {
		n.Data = map[string]any{}
	}

	stored, err := s.repo.CreateNotification(ctx, n)
	if err != nil {
		s.metrics.Notification(string(n.Type), "failed")
		logFailure(logCtx, "notification not stored", err, slog.String("type", string(n.Type)))
		return domain.Notification{}, false
	}

	result := "sent"
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, stored); err != nil {
			result = "publish_failed"
			logFailure(logCtx, "notification stored but not published", err,
				slog.String("type", string(n.Type)),
				slog.String("notification_id", stored.ID),
			)
		}
	}
	s.metrics.Notification(string(n.Type), result)
	return stored, true
}

// Announce sends one notification per available technician in the company,
// or in one branch of it. Individual failures do not stop the rest.
func (s *Service) Announce(ctx context.Context, input AnnounceInput) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if err := s.validate.Struct(input); err != nil {
		return 0, err
	}

	var profiles []domain.TechnicianProfile
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if input.BranchID != "" {
			if _, err := s.repo.GetBranch(txCtx, input.CompanyID, input.BranchID); err != nil {
				return err
			}
		}
		var err error
		profiles, err = s.repo.ListProfiles(txCtx, ports.ProfileFilter{
			CompanyID:     input.CompanyID,
			BranchID:      input.BranchID,
			AvailableOnly: true,
		})
		return err
	}); err != nil {
		return 0, err
	}

	data := map[string]any{}
	if input.BranchID != "" {
		data["branchId"] = input.BranchID
	}
	if sender := strings.TrimSpace(input.SentBy); sender != "" {
		data["sentBy"] = sender
	}

	sent := 0
	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			logFailure(s.logCtx(ctx, input.CompanyID, ""), "announcement interrupted", err, slog.Int("sent", sent))
			break
		}
		payload := make(map[string]any, len(data))
		for k, v := range data {
			payload[k] = v
		}
		if _, ok := s.dispatch(ctx, domain.Notification{
			UserID:    profile.UserID,
			CompanyID: input.CompanyID,
			Type:      domain.NotificationAnnouncement,
			Title:     input.Title,
			Message:   input.Message,
			Data:      payload,
		}); ok {
			sent++
		}
	}

	logging.Info(s.logCtx(ctx, input.CompanyID, ""), "announcement sent",
		slog.String("branch_id", input.BranchID),
		slog.Int("recipients", len(profiles)),
		slog.Int("sent", sent),
	)
	return sent, nil
}

func (s *Service) GetNotifications(ctx context.Context, query NotificationQuery) (NotificationPage, error) {
	if err := s.ready(ctx); err != nil {
		return NotificationPage{}, err
	}
	if err := s.validate.Struct(query); err != nil {
		return NotificationPage{}, err
	}

	page, pageSize := normalizePage(query.Page, query.PageSize)
	items, total, err := s.repo.ListNotifications(ctx, ports.NotificationFilter{
		CompanyID:  query.CompanyID,
		UserID:     query.UserID,
		UnreadOnly: query.UnreadOnly,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
	})
	if err != nil {
		return NotificationPage{}, err
	}
	return NotificationPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (s *Service) GetUnreadCount(ctx context.Context, companyID string, userID string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if companyID == "" || userID == "" {
		return 0, errs.Validationf("companyId and userId are required")
	}
	return s.repo.CountUnread(ctx, companyID, userID)
}

// MarkRead fails with NotFound when the notification belongs to someone else.
func (s *Service) MarkRead(ctx context.Context, companyID string, userID string, notificationID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if companyID == "" || userID == "" || notificationID == "" {
		return errs.Validationf("companyId, userId and notificationId are required")
	}
	return s.repo.MarkRead(ctx, companyID, userID, notificationID, s.nowUTC())
}

func (s *Service) MarkAllRead(ctx context.Context, companyID string, userID string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if companyID == "" || userID == "" {
		return 0, errs.Validationf("companyId and userId are required")
	}
	return s.repo.MarkAllRead(ctx, companyID, userID, s.nowUTC())
}

// SweepNotifications deletes read notifications older than the retention window.
func (s *Service) SweepNotifications(ctx context.Context) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	cutoff := s.nowUTC().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logging.Info(logging.WithComponent(ctx, "usecase.performance"), "read notifications swept",
			slog.Int64("deleted", deleted),
			slog.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}
