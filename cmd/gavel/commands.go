package main

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"gavel/internal/hearing"
	"gavel/internal/jobs"
)

func newHealthCommand(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload struct {
				Status             string  `json:"status"`
				Model              string  `json:"model"`
				StorageTarget      string  `json:"storage_target"`
				ChunkLengthMinutes float64 `json:"chunk_length_minutes"`
			}
			if err := client.get(cmd.Context(), "/health", &payload); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\nmodel: %s\nstorage: %s\nchunk length: %g min\n",
				payload.Status, payload.Model, payload.StorageTarget, payload.ChunkLengthMinutes)
			return nil
		},
	}
}

func newSubmitCommand(client *apiClient) *cobra.Command {
	var req struct {
		SourceURL   string   `json:"source_url"`
		Year        string   `json:"year"`
		Committee   string   `json:"committee"`
		BillName    string   `json:"bill_name"`
		VideoTitle  string   `json:"video_title"`
		HearingDate string   `json:"hearing_date"`
		Room        string   `json:"room"`
		AMPM        string   `json:"ampm"`
		BillIDs     []string `json:"bill_ids"`
	}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a hearing for transcription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload struct {
				JobID   string `json:"job_id"`
				Status  string `json:"status"`
				Message string `json:"message"`
			}
			if err := client.post(cmd.Context(), "/transcribe", req, &payload); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s %s\n", payload.JobID, payload.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.SourceURL, "url", "", "Source video URL")
	cmd.Flags().StringVar(&req.Year, "year", "", "Hearing year")
	cmd.Flags().StringVar(&req.Committee, "committee", "", "Committee name")
	cmd.Flags().StringVar(&req.BillName, "bill", "", "Bill name")
	cmd.Flags().StringVar(&req.VideoTitle, "title", "", "Video title")
	cmd.Flags().StringVar(&req.HearingDate, "date", "", "Hearing date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Room, "room", "", "Hearing room")
	cmd.Flags().StringVar(&req.AMPM, "ampm", "", "Morning or afternoon session")
	cmd.Flags().StringSliceVar(&req.BillIDs, "bill-id", nil, "Bill identifiers covered by the hearing")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("committee")
	_ = cmd.MarkFlagRequired("bill")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newStatusCommand(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of a transcription job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var job jobs.Job
			if err := client.get(cmd.Context(), "/job_status/"+url.PathEscape(args[0]), &job); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "job: %s\nstatus: %s\n", job.ID, job.Status)
			if job.Progress != "" {
				fmt.Fprintf(out, "progress: %s\n", job.Progress)
			}
			if job.Error != "" {
				fmt.Fprintf(out, "error: %s\n", job.Error)
			}
			for _, warning := range job.Warnings {
				fmt.Fprintf(out, "warning: %s\n", warning)
			}
			if job.Result != nil {
				fmt.Fprintf(out, "folder: %s\ncached: %t\nsegments: %d\n",
					job.Result.FolderPath, job.Result.Cached, job.Result.Transcript.TotalSegments)
			}
			return nil
		},
	}
}

func newListCommand(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload struct {
				Transcripts []hearing.Metadata `json:"transcripts"`
				Count       int                `json:"count"`
			}
			if err := client.get(cmd.Context(), "/list-transcripts", &payload); err != nil {
				return err
			}
			if payload.Count == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no transcripts stored")
				return nil
			}

			rows := make([][]string, 0, len(payload.Transcripts))
			for _, meta := range payload.Transcripts {
				rows = append(rows, []string{
					meta.Date,
					meta.Committee,
					meta.BillName,
					meta.VideoTitle,
					formatDuration(meta.Duration),
					meta.FolderPath,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Date", "Committee", "Bill", "Title", "Duration", "Folder"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newTranscriptCommand(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "transcript <folder-path>",
		Short: "Fetch a stored transcript as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload json.RawMessage
			if err := client.get(cmd.Context(), "/transcript/"+args[0], &payload); err != nil {
				return err
			}
			var pretty map[string]any
			if err := json.Unmarshal(payload, &pretty); err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(pretty, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	minutes := int(seconds) / 60
	remainder := int(seconds) % 60
	return fmt.Sprintf("%d:%02d", minutes, remainder)
}
