package contactControllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Notifier delivers a contact-form message somewhere (email, ticket queue).
// Delivery is fire-and-forget; the request never waits on it.
type Notifier interface {
	Notify(name, email, subject, body string)
}

// LogNotifier is the default sink when no mail transport is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(name, email, subject, body string) {
	n.Logger.Info("contact message received",
		"name", name, "email", email, "subject", subject)
}

type ContactInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// POST /contact
func SubmitContact(notifier Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ContactInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		go notifier.Notify(input.Name, input.Email, input.Subject, input.Body)
		c.JSON(http.StatusAccepted, gin.H{"message": "Thanks, we'll get back to you soon"})
	}
}
