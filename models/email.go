package models

// EmailContent is a fully rendered email supplied by the dashboard
type EmailContent struct {
	Subject     string `json:"subject" validate:"required"`
	TextContent string `json:"text_content"`
	HTMLContent string `json:"html_content" validate:"required"`
}

// SendBulkEmailRequest is the body of POST /emails/bulk
type SendBulkEmailRequest struct {
	CustomEmail     *EmailContent `json:"custom_email"`
	SelectedUserIDs []string      `json:"selected_user_ids"`
}

// SendIndividualEmailRequest is the body of POST /emails/individual
type SendIndividualEmailRequest struct {
	IndividualEmail string `json:"individual_email" validate:"required,email"`
	Subject         string `json:"subject" validate:"required"`
	TextContent     string `json:"text_content"`
	HTMLContent     string `json:"html_content" validate:"required"`
}

// PreviewEmailRequest is the body of POST /emails/preview
type PreviewEmailRequest struct {
	Template    string `json:"template" validate:"required,oneof=downtime uptime credits"`
	TextContent string `json:"text_content"`
}

// BulkEmailResult reports per-recipient outcomes of a bulk send
type BulkEmailResult struct {
	Total        int      `json:"total"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
}
