package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// PromptTitle asks for the recording title. An empty answer keeps the
// placeholder default.
func PromptTitle(defaultTitle string) (string, error) {
	var title string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Recording Title").
				Placeholder(defaultTitle).
				Value(&title),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return defaultTitle, nil
	}
	return title, nil
}

// RenderResult formats a finished transcription for the terminal.
// Edit and PDF links are listed only when known.
func RenderResult(title, url, editURL, pdfURL string) string {
	body := fmt.Sprintf("%s\n%s %s\n%s %s",
		StyleSuccess.Render("Transcription complete"),
		StyleLabel.Render("Title:"), title,
		StyleLabel.Render("Link:"), StyleHighlight.Render(url))
	if editURL != "" {
		body += fmt.Sprintf("\n%s %s", StyleLabel.Render("Edit:"), StyleMuted.Render(editURL))
	}
	if pdfURL != "" {
		body += fmt.Sprintf("\n%s %s", StyleLabel.Render("PDF:"), StyleMuted.Render(pdfURL))
	}
	return StyleBox.Render(body)
}

// RenderFailure formats a failed submission with an optional hint line.
func RenderFailure(msg, hint string) string {
	if hint == "" {
		return StyleError.Render(msg)
	}
	return StyleError.Render(msg) + "\n" + StyleSubtle.Render(hint)
}

// ConfirmRetry asks whether to submit the kept recording again.
func ConfirmRetry() (bool, error) {
	retry := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Submit the recording again?").
				Affirmative("Retry").
				Negative("Give up").
				Value(&retry),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return retry, nil
}
