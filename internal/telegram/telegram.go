package telegram

// Client delivers operator alerts. Implementations are no-ops when no bot is configured.
type Client interface {
	SendMessageToUser(message string) error

	// Alert sends a bold title followed by detail, escaped for MarkdownV2.
	Alert(title, detail string)
}
