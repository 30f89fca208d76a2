// Package email sends transactional email through Postmark, or writes it to
// disk with DevSender during local development.
//
// Both senders implement EmailSender and validate SendEmailParams before doing
// any work; invalid params fail with ErrInvalidParams, provider failures with
// ErrFailedToSendEmail.
//
//	client, err := email.NewPostmarkClient(cfg)
//	if err != nil {
//	    return err
//	}
//	html, err := templates.Render(ctx, templates.Notification(data))
//	if err != nil {
//	    return err
//	}
//	err = client.SendEmail(ctx, email.SendEmailParams{
//	    SendTo:   "owner@example.com",
//	    Subject:  data.Title,
//	    BodyHTML: html,
//	    Tag:      "compliance",
//	})
package email
