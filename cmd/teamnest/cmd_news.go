package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tyemirov/teamnest/internal/apikit"
	"github.com/tyemirov/teamnest/pkg/rolegate"
)

func newEventsCommand() *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "View and manage program events",
	}

	eventsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List upcoming events",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			events, listErr := app.client.Events.List(command.Context())
			if listErr != nil {
				return listErr
			}
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "WHEN\tTITLE\tLOCATION")
			for _, event := range events {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", event.StartsAt, event.Title, event.Location)
			}
			return writer.Flush()
		},
	})

	var createInput apikit.EventInput
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapEventsManage); guardErr != nil {
				return guardErr
			}
			event, createErr := app.client.Events.Create(command.Context(), createInput)
			if createErr != nil {
				return createErr
			}
			fmt.Fprintf(command.OutOrStdout(), "Created event %s (%s)\n", event.Title, event.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&createInput.Title, "title", "", "Event title")
	createCmd.Flags().StringVar(&createInput.Description, "description", "", "Event description")
	createCmd.Flags().StringVar(&createInput.StartsAt, "starts-at", "", "Start time (RFC 3339)")
	createCmd.Flags().StringVar(&createInput.EndsAt, "ends-at", "", "End time (RFC 3339)")
	createCmd.Flags().StringVar(&createInput.Location, "location", "", "Location")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("starts-at")
	eventsCmd.AddCommand(createCmd)

	return eventsCmd
}

func newAnnouncementsCommand() *cobra.Command {
	announcementsCmd := &cobra.Command{
		Use:   "announcements",
		Short: "View and publish announcements",
	}

	announcementsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recent announcements",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			announcements, listErr := app.client.Announcements.List(command.Context())
			if listErr != nil {
				return listErr
			}
			out := command.OutOrStdout()
			for _, announcement := range announcements {
				fmt.Fprintf(out, "[%s] %s\n%s\n\n", announcement.PublishedAt, announcement.Title, announcement.Body)
			}
			return nil
		},
	})

	var publishInput apikit.AnnouncementInput
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish an announcement",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapAnnouncementsManage); guardErr != nil {
				return guardErr
			}
			announcement, publishErr := app.client.Announcements.Publish(command.Context(), publishInput)
			if publishErr != nil {
				return publishErr
			}
			fmt.Fprintf(command.OutOrStdout(), "Published %s (%s)\n", announcement.Title, announcement.ID)
			return nil
		},
	}
	publishCmd.Flags().StringVar(&publishInput.Title, "title", "", "Announcement title")
	publishCmd.Flags().StringVar(&publishInput.Body, "body", "", "Announcement body")
	_ = publishCmd.MarkFlagRequired("title")
	_ = publishCmd.MarkFlagRequired("body")
	announcementsCmd.AddCommand(publishCmd)

	return announcementsCmd
}

func newPhotosCommand() *cobra.Command {
	photosCmd := &cobra.Command{
		Use:   "photos",
		Short: "View and upload class photos",
	}

	photosCmd.AddCommand(&cobra.Command{
		Use:   "list <class-id>",
		Short: "List a class's photos",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			photos, listErr := app.client.Photos.List(command.Context(), arguments[0])
			if listErr != nil {
				return listErr
			}
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "UPLOADED\tCAPTION\tURL")
			for _, photo := range photos {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", photo.UploadedAt, photo.Caption, photo.URL)
			}
			return writer.Flush()
		},
	})

	var uploadClassID string
	var uploadCaption string
	uploadCmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a photo to a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapPhotosUpload); guardErr != nil {
				return guardErr
			}
			file, openErr := os.Open(arguments[0])
			if openErr != nil {
				return fmt.Errorf("cli.open_photo: %w", openErr)
			}
			defer func() { _ = file.Close() }()

			photo, uploadErr := app.client.Photos.Upload(command.Context(), uploadClassID,
				filepath.Base(arguments[0]), file, uploadCaption)
			if uploadErr != nil {
				return uploadErr
			}
			fmt.Fprintf(command.OutOrStdout(), "Uploaded %s\n", photo.URL)
			return nil
		},
	}
	uploadCmd.Flags().StringVar(&uploadClassID, "class", "", "Class id")
	uploadCmd.Flags().StringVar(&uploadCaption, "caption", "", "Optional caption")
	_ = uploadCmd.MarkFlagRequired("class")
	photosCmd.AddCommand(uploadCmd)

	return photosCmd
}
