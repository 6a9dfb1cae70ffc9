package email

import (
	"bytes"
	"html/template"
	texttemplate "text/template"

	"github.com/nexusshop/orderapi/pkg/errors"
)

// Template names accepted by the email notifier
const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplateShippingUpdate    = "shipping_update"
	TemplateTrackingUpdate    = "tracking_update"
	TemplateWelcome           = "welcome"
	TemplatePasswordReset     = "password_reset"
)

type templateDef struct {
	subject *texttemplate.Template
	body    *template.Template
}

var registry = map[string]templateDef{
	TemplateOrderConfirmation: {
		subject: texttemplate.Must(texttemplate.New("order_confirmation_subject").
			Parse(`Order {{.order_number}} confirmed - {{.shop_name}}`)),
		body: template.Must(template.New("order_confirmation").Parse(orderConfirmationHTML)),
	},
	TemplateShippingUpdate: {
		subject: texttemplate.Must(texttemplate.New("shipping_update_subject").
			Parse(`Your order {{.order_number}} has shipped`)),
		body: template.Must(template.New("shipping_update").Parse(shippingUpdateHTML)),
	},
	TemplateTrackingUpdate: {
		subject: texttemplate.Must(texttemplate.New("tracking_update_subject").
			Parse(`Tracking update for order {{.order_number}}`)),
		body: template.Must(template.New("tracking_update").Parse(trackingUpdateHTML)),
	},
	TemplateWelcome: {
		subject: texttemplate.Must(texttemplate.New("welcome_subject").
			Parse(`Welcome to {{.shop_name}}!`)),
		body: template.Must(template.New("welcome").Parse(welcomeHTML)),
	},
	TemplatePasswordReset: {
		subject: texttemplate.Must(texttemplate.New("password_reset_subject").
			Parse(`Reset your {{.shop_name}} password`)),
		body: template.Must(template.New("password_reset").Parse(passwordResetHTML)),
	},
}

// IsRegistered reports whether a template name is known
func IsRegistered(name string) bool {
	_, ok := registry[name]
	return ok
}

// Render produces the subject and HTML body for a named template
func Render(name string, data map[string]interface{}) (subject, html string, err error) {
	def, ok := registry[name]
	if !ok {
		return "", "", &errors.ErrUnknownTemplate{Template: name}
	}

	var subjBuf bytes.Buffer
	if err := def.subject.Execute(&subjBuf, data); err != nil {
		return "", "", err
	}

	var bodyBuf bytes.Buffer
	if err := def.body.Execute(&bodyBuf, data); err != nil {
		return "", "", err
	}

	return subjBuf.String(), bodyBuf.String(), nil
}

const orderConfirmationHTML = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Order confirmation</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Thanks for your order{{if .customer_name}}, {{.customer_name}}{{end}}!</h2>
		<p>Your order <strong>{{.order_number}}</strong> is confirmed.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Item</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Qty</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Price</th>
				</tr>
			</thead>
			<tbody>
				{{range .items}}
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.name}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.quantity}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.price}}</td>
				</tr>
				{{end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="2" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">{{.total}} {{.currency}}</td>
				</tr>
			</tfoot>
		</table>
		<p style="margin-top: 30px; color: #555;">
			Best regards,<br>
			<strong>The {{.shop_name}} team</strong>
		</p>
	</div>
</body>
</html>`

const shippingUpdateHTML = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Shipping update</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Your order is on its way</h2>
		<p>Order <strong>{{.order_number}}</strong> has shipped{{if .carrier}} with {{.carrier}}{{end}}.</p>
		{{if .estimated_delivery}}<p>Estimated delivery: {{.estimated_delivery}}</p>{{end}}
		<p style="margin-top: 30px; color: #555;">
			Best regards,<br>
			<strong>The {{.shop_name}} team</strong>
		</p>
	</div>
</body>
</html>`

const trackingUpdateHTML = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Tracking update</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Tracking update</h2>
		<p>Order <strong>{{.order_number}}</strong>: {{.carrier}} tracking number <strong>{{.tracking_number}}</strong>.</p>
		{{if .tracking_url}}<p><a href="{{.tracking_url}}">Track your package</a></p>{{end}}
		<p style="margin-top: 30px; color: #555;">
			Best regards,<br>
			<strong>The {{.shop_name}} team</strong>
		</p>
	</div>
</body>
</html>`

const welcomeHTML = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Welcome</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Welcome{{if .name}}, {{.name}}{{end}}!</h2>
		<p>Your {{.shop_name}} account is ready.</p>
		<p style="margin-top: 30px; color: #555;">
			Best regards,<br>
			<strong>The {{.shop_name}} team</strong>
		</p>
	</div>
</body>
</html>`

const passwordResetHTML = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Password reset</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Reset your password</h2>
		<p>We received a request to reset the password for your {{.shop_name}} account.</p>
		<p><a href="{{.reset_url}}">Choose a new password</a></p>
		<p>If you didn't request this, you can ignore this email.</p>
	</div>
</body>
</html>`
