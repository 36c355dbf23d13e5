package billing

import (
	"fmt"
	"html/template"
	"strings"
)

var documentFuncs = template.FuncMap{
	"peso": Peso,
}

var invoiceTmpl = template.Must(template.New("invoice").Funcs(documentFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Arial, sans-serif; font-size: 12px; margin: 32px; }
  h1 { font-size: 18px; margin-bottom: 0; }
  .meta { color: #555; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; margin-top: 12px; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 16px; width: 40%; margin-left: auto; }
  .totals td { border: none; padding: 3px 8px; }
  .grand { font-weight: bold; border-top: 1px solid #333; }
</style>
</head>
<body>
<h1>UniAsia Hardware &amp; Electrical Supply</h1>
<div class="meta">
  <div>Invoice {{.Number}} &middot; {{.TxnCode}}</div>
  <div>{{.IssuedAt.Format "January 2, 2006"}}</div>
  <div>Billed to: {{.CustomerName}}</div>
  {{if .CustomerAddress}}<div>{{.CustomerAddress}}</div>{{end}}
</div>
<table>
  <tr><th>Description</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Disc %</th><th class="num">Amount</th></tr>
  {{range .Lines}}
  <tr>
    <td>{{.Description}}</td>
    <td class="num">{{.Quantity}}</td>
    <td class="num">{{peso .UnitPrice}}</td>
    <td class="num">{{printf "%.0f" .DiscountPercent}}</td>
    <td class="num">{{.AmountDisplay}}</td>
  </tr>
  {{end}}
</table>
<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{peso .Subtotal}}</td></tr>
  <tr><td>Discount</td><td class="num">{{peso .TotalDiscount}}</td></tr>
  <tr><td>Sales Tax</td><td class="num">{{peso .SalesTax}}</td></tr>
  {{if gt .InterestPercent 0.0}}
  <tr><td>Interest ({{printf "%.0f" .InterestPercent}}%)</td><td class="num">{{peso .InterestAmount}}</td></tr>
  {{end}}
  {{if gt .ShippingFee 0.0}}
  <tr><td>Shipping Fee</td><td class="num">{{peso .ShippingFee}}</td></tr>
  {{end}}
  <tr class="grand"><td>Grand Total</td><td class="num">{{.GrandTotalDisplay}}</td></tr>
  {{if gt .TermsMonths 0}}
  <tr><td>Terms</td><td class="num">{{.TermsMonths}} month(s) of {{peso .PerTermAmount}}</td></tr>
  {{end}}
</table>
</body>
</html>`))

var deliveryReceiptTmpl = template.Must(template.New("delivery_receipt").Funcs(documentFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Arial, sans-serif; font-size: 12px; margin: 32px; }
  h1 { font-size: 18px; margin-bottom: 0; }
  .meta { color: #555; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; margin-top: 12px; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 16px; width: 40%; margin-left: auto; }
  .totals td { border: none; padding: 3px 8px; }
  .grand { font-weight: bold; border-top: 1px solid #333; }
  .sign { margin-top: 48px; display: flex; justify-content: space-between; }
  .sign div { border-top: 1px solid #333; width: 40%; padding-top: 4px; text-align: center; }
</style>
</head>
<body>
<h1>UniAsia Hardware &amp; Electrical Supply</h1>
<div class="meta">
  <div>Delivery Receipt {{.Number}} &middot; {{.TxnCode}}</div>
  <div>{{.IssuedAt.Format "January 2, 2006"}}</div>
  <div>Deliver to: {{.CustomerName}}</div>
  {{if .CustomerAddress}}<div>{{.CustomerAddress}}</div>{{end}}
  {{if .PlateNumber}}<div>Truck {{.PlateNumber}}{{if .DriverName}} &middot; Driver {{.DriverName}}{{end}}</div>{{end}}
</div>
<table>
  <tr><th>Description</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Disc %</th><th class="num">Amount</th></tr>
  {{range .Lines}}
  <tr>
    <td>{{.Description}}</td>
    <td class="num">{{.Quantity}}</td>
    <td class="num">{{peso .UnitPrice}}</td>
    <td class="num">{{printf "%.0f" .DiscountPercent}}</td>
    <td class="num">{{.AmountDisplay}}</td>
  </tr>
  {{end}}
</table>
<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{peso .Subtotal}}</td></tr>
  <tr><td>Discount</td><td class="num">{{peso .TotalDiscount}}</td></tr>
  <tr class="grand"><td>Amount Due</td><td class="num">{{.AmountDueDisplay}}</td></tr>
</table>
<div class="sign">
  <div>Received by</div>
  <div>Delivered by</div>
</div>
</body>
</html>`))

func renderInvoiceHTML(inv *Invoice) (string, error) {
	var b strings.Builder
	if err := invoiceTmpl.Execute(&b, inv); err != nil {
		return "", fmt.Errorf("render invoice html: %w", err)
	}
	return b.String(), nil
}

func renderDeliveryReceiptHTML(dr *DeliveryReceipt) (string, error) {
	var b strings.Builder
	if err := deliveryReceiptTmpl.Execute(&b, dr); err != nil {
		return "", fmt.Errorf("render delivery receipt html: %w", err)
	}
	return b.String(), nil
}
