package services

import (
	"bytes"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/models"
)

const invoiceTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<style>
  body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; color: #333; margin: 0; padding: 0; }
  .container { max-width: 700px; margin: 30px auto; background: #ffffff; border: 1px solid #e0e0e0; border-radius: 8px; overflow: hidden; }
  .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 24px 30px; color: white; }
  .header h1 { margin: 0; font-size: 24px; }
  .header p { margin: 6px 0 0; font-size: 13px; opacity: 0.9; }
  .content { padding: 24px 30px; }
  .blocks { width: 100%; margin-bottom: 24px; }
  .blocks td { vertical-align: top; width: 50%; font-size: 14px; line-height: 1.5; }
  .blocks .label { font-size: 11px; color: #888; text-transform: uppercase; letter-spacing: 1px; margin-bottom: 6px; }
  table.items { width: 100%; border-collapse: collapse; font-size: 14px; }
  table.items th { text-align: left; border-bottom: 2px solid #667eea; padding: 8px 6px; font-size: 12px; text-transform: uppercase; color: #666; }
  table.items td { border-bottom: 1px solid #eee; padding: 10px 6px; }
  table.items td.num, table.items th.num { text-align: right; }
  .summary { width: 260px; margin-left: auto; margin-top: 20px; font-size: 14px; }
  .summary td { padding: 6px; }
  .summary td.num { text-align: right; }
  .summary tr.total td { border-top: 2px solid #667eea; font-weight: bold; font-size: 16px; }
  .footer { background: #f4f4f4; padding: 16px 30px; font-size: 12px; color: #999; text-align: center; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>MobileMania — Invoice</h1>
    <p>Order {{.OrderID}} &middot; Paid on {{.PaidAt}}</p>
  </div>
  <div class="content">
    <table class="blocks">
      <tr>
        <td>
          <div class="label">Billed To</div>
          {{.UserName}}<br>{{.UserEmail}}
        </td>
        <td>
          <div class="label">Shipped To</div>
          {{.Address.FullName}}<br>
          {{.Address.Address}}<br>
          {{.Address.City}}, {{.Address.State}} {{.Address.PostalCode}}<br>
          {{.Address.Country}}
        </td>
      </tr>
    </table>
    <table class="items">
      <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Amount</th></tr>
      {{range .Items}}
      <tr>
        <td>{{.Name}}</td>
        <td class="num">{{.Qty}}</td>
        <td class="num">&#8377;{{money .Price}}</td>
        <td class="num">&#8377;{{money .Amount}}</td>
      </tr>
      {{end}}
    </table>
    <table class="summary">
      <tr><td>Subtotal</td><td class="num">&#8377;{{money .Subtotal}}</td></tr>
      <tr><td>Tax</td><td class="num">&#8377;{{money .Tax}}</td></tr>
      <tr class="total"><td>Total</td><td class="num">&#8377;{{money .Total}}</td></tr>
    </table>
  </div>
  <div class="footer">Thank you for shopping with MobileMania. This is an automatically generated invoice.</div>
</div>
</body>
</html>`

type invoiceItem struct {
	Name   string
	Qty    int
	Price  float64
	Amount float64
}

type invoiceData struct {
	OrderID   string
	PaidAt    string
	UserName  string
	UserEmail string
	Address   models.ShippingAddress
	Items     []invoiceItem
	Subtotal  float64
	Tax       float64
	Total     float64
}

// InvoiceService renders the fixed invoice layout for a paid order.
type InvoiceService struct {
	tmpl   *template.Template
	logger *zap.Logger
}

func NewInvoiceService(logger *zap.Logger) *InvoiceService {
	tmpl := template.Must(template.New("invoice").Funcs(template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}).Parse(invoiceTemplate))
	return &InvoiceService{tmpl: tmpl, logger: logger}
}

// RenderInvoice is a pure function from an order and user snapshot to the
// invoice document bytes. Failure means "invoice unavailable"; callers must
// not block order-paid semantics on it.
func (s *InvoiceService) RenderInvoice(order *models.Order, user *models.User) ([]byte, error) {
	paidAt := "-"
	if order.PaidAt != nil {
		paidAt = order.PaidAt.Format("02 Jan 2006 15:04 MST")
	}

	items := make([]invoiceItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, invoiceItem{
			Name:   item.Name,
			Qty:    item.Qty,
			Price:  item.Price,
			Amount: round2(item.Price * float64(item.Qty)),
		})
	}

	// TODO: derive the displayed split from the order's stored itemsPrice and
	// taxPrice instead of this fixed 90/10 approximation of the total.
	data := invoiceData{
		OrderID:   order.ID.Hex(),
		PaidAt:    paidAt,
		UserName:  user.Name,
		UserEmail: user.Email,
		Address:   order.ShippingAddress,
		Items:     items,
		Subtotal:  round2(order.TotalPrice * 0.9),
		Tax:       round2(order.TotalPrice * 0.1),
		Total:     order.TotalPrice,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		s.logger.Error("Invoice rendering failed", zap.String("order_id", order.ID.Hex()), zap.Error(err))
		return nil, err
	}
	if buf.Len() == 0 {
		s.logger.Error("Invoice rendering produced an empty document", zap.String("order_id", order.ID.Hex()))
		return nil, fmt.Errorf("rendered invoice is empty")
	}
	return buf.Bytes(), nil
}
