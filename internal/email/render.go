// Package email renders and sends order confirmation emails.
package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/pricing"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const dateLayout = "Jan 2, 2006"

type Content struct {
	Subject string
	HTML    string
	Text    string
}

type itemView struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

type orderView struct {
	OrderID         string
	OrderDate       string
	CustomerName    string
	Phone           string
	Comment         string
	Items           []itemView
	Subtotal        string
	HasDiscount     bool
	DiscountPercent int
	DiscountAmount  string
	Total           string
}

type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer() (*Renderer, error) {
	html, err := htmltemplate.ParseFS(templatesFS, "templates/order.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html template: %w", err)
	}
	text, err := texttemplate.ParseFS(templatesFS, "templates/order.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}
	return &Renderer{html: html, text: text}, nil
}

func Subject(orderID string) string {
	return fmt.Sprintf("🐾 Order Confirmation #%s - WoofCrafts", orderID)
}

func (r *Renderer) Render(order domain.OrderRecord) (Content, error) {
	view := newOrderView(order)

	var html, text bytes.Buffer
	if err := r.html.Execute(&html, view); err != nil {
		return Content{}, fmt.Errorf("failed to render html email: %w", err)
	}
	if err := r.text.Execute(&text, view); err != nil {
		return Content{}, fmt.Errorf("failed to render text email: %w", err)
	}

	return Content{
		Subject: Subject(order.OrderID),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func newOrderView(order domain.OrderRecord) orderView {
	items := make([]itemView, len(order.Items))
	for i, item := range order.Items {
		items[i] = itemView{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    pricing.Money(item.Price),
			Subtotal: pricing.Money(item.Subtotal),
		}
	}

	return orderView{
		OrderID:         order.OrderID,
		OrderDate:       order.PlacedAt.Format(dateLayout),
		CustomerName:    order.CustomerName,
		Phone:           order.CustomerPhone,
		Comment:         order.CustomerComment,
		Items:           items,
		Subtotal:        pricing.Money(order.Subtotal),
		HasDiscount:     order.DiscountAmount.IsPositive(),
		DiscountPercent: order.DiscountPercent,
		DiscountAmount:  pricing.Money(order.DiscountAmount),
		Total:           pricing.Money(order.Total),
	}
}
