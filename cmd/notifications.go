package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"techrank/internal/bootstrap"
	"techrank/internal/errs"
	"techrank/internal/usecase/performance"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notify"},
	Short:   "Technician notification inbox",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Page through a technician's notifications, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		unread, _ := cmd.Flags().GetBool("unread")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		result, err := svc.GetNotifications(cmd.Context(), performance.NotificationQuery{
			CompanyID:  company,
			UserID:     user,
			UnreadOnly: unread,
			Page:       page,
			PageSize:   pageSize,
		})
		if err != nil {
			return errs.Wrap(err, "list notifications")
		}
		if err := writeNotifications(cmd, result.Items); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d (%d notifications)\n", result.Page, result.TotalPages, result.Total); err != nil {
			return errs.Wrap(err, "write notification output")
		}
		return nil
	}),
}

var notificationsUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Count unread notifications",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		count, err := svc.GetUnreadCount(cmd.Context(), company, user)
		if err != nil {
			return errs.Wrap(err, "count unread notifications")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\n", count); err != nil {
			return errs.Wrap(err, "write notification output")
		}
		return nil
	}),
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark one notification read",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		if err := svc.MarkRead(cmd.Context(), company, user, cmd.Flags().Arg(0)); err != nil {
			return errs.Wrap(err, "mark notification read")
		}
		return nil
	}),
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification read",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		user, _ := cmd.Flags().GetString("user")
		n, err := svc.MarkAllRead(cmd.Context(), company, user)
		if err != nil {
			return errs.Wrap(err, "mark all notifications read")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "marked %d notifications read\n", n); err != nil {
			return errs.Wrap(err, "write notification output")
		}
		return nil
	}),
}

var notificationsAnnounceCmd = &cobra.Command{
	Use:   "announce",
	Short: "Broadcast a system announcement to available technicians",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		company, _ := cmd.Flags().GetString("company")
		branch, _ := cmd.Flags().GetString("branch")
		title, _ := cmd.Flags().GetString("title")
		message, _ := cmd.Flags().GetString("message")
		sentBy, _ := cmd.Flags().GetString("by")

		sent, err := svc.Announce(cmd.Context(), performance.AnnounceInput{
			CompanyID: company,
			BranchID:  branch,
			Title:     title,
			Message:   message,
			SentBy:    sentBy,
		})
		if err != nil {
			return errs.Wrap(err, "announce")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "announcement sent to %d technicians\n", sent); err != nil {
			return errs.Wrap(err, "write notification output")
		}
		return nil
	}),
}

func assignmentCommand(use string, short string, reassign bool) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
			company, _ := cmd.Flags().GetString("company")
			user, _ := cmd.Flags().GetString("user")
			service, _ := cmd.Flags().GetString("service")
			ref, _ := cmd.Flags().GetString("ref")
			previous, _ := cmd.Flags().GetString("previous")

			notice := performance.AssignmentNotice{
				UserID:         user,
				CompanyID:      company,
				ServiceID:      service,
				ServiceRef:     ref,
				PreviousUserID: previous,
			}
			notify := svc.NotifyAssigned
			if reassign {
				notify = svc.NotifyReassigned
			}
			n, ok := notify(cmd.Context(), notice)
			if !ok {
				return errs.Validationf("notification for service %s was not sent; see log", service)
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "sent %s: %s\n", n.Type, n.ID); err != nil {
				return errs.Wrap(err, "write notification output")
			}
			return nil
		}),
	}
	c.Flags().String("service", "", "Service id")
	c.Flags().String("ref", "", "Human-readable service reference")
	_ = c.MarkFlagRequired("service")
	if reassign {
		c.Flags().String("previous", "", "Previously assigned technician")
	}
	return c
}

var notificationsSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete read notifications past the retention window",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *performance.Service) error {
		n, err := svc.SweepNotifications(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "sweep notifications")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %d notifications\n", n); err != nil {
			return errs.Wrap(err, "write notification output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsAssignedCmd := assignmentCommand("assigned", "Tell a technician a service was assigned to them", false)
	notificationsReassignedCmd := assignmentCommand("reassigned", "Tell a technician a service was reassigned to them", true)
	notificationsCmd.AddCommand(
		notificationsListCmd,
		notificationsUnreadCmd,
		notificationsReadCmd,
		notificationsReadAllCmd,
		notificationsAnnounceCmd,
		notificationsAssignedCmd,
		notificationsReassignedCmd,
		notificationsSweepCmd,
	)

	for _, c := range []*cobra.Command{
		notificationsListCmd,
		notificationsUnreadCmd,
		notificationsReadCmd,
		notificationsReadAllCmd,
		notificationsAssignedCmd,
		notificationsReassignedCmd,
	} {
		c.Flags().String("user", "", "Technician user id")
		_ = c.MarkFlagRequired("user")
	}

	notificationsListCmd.Flags().Bool("unread", false, "Only unread notifications")
	notificationsListCmd.Flags().Int("page", 1, "Page number")
	notificationsListCmd.Flags().Int("page-size", 20, "Notifications per page (max 100)")

	notificationsAnnounceCmd.Flags().String("branch", "", "Limit to one branch")
	notificationsAnnounceCmd.Flags().String("title", "", "Announcement title")
	notificationsAnnounceCmd.Flags().String("message", "", "Announcement body")
	notificationsAnnounceCmd.Flags().String("by", "", "Sender")
	_ = notificationsAnnounceCmd.MarkFlagRequired("title")
	_ = notificationsAnnounceCmd.MarkFlagRequired("message")
}
