package printing

// statementTemplate renders an appbilling.BillStatement
const statementTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Statement {{.Bill.BillNumber}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; color: #222; }
  h1 { font-size: 20px; margin: 0; }
  .header { display: flex; justify-content: space-between; border-bottom: 2px solid #1f4e79; padding-bottom: 8px; }
  .muted { color: #666; }
  table { width: 100%; border-collapse: collapse; margin-top: 12px; }
  th, td { padding: 4px 6px; border-bottom: 1px solid #ddd; text-align: left; }
  td.num, th.num { text-align: right; }
  .total td { font-weight: bold; border-top: 2px solid #222; }
  .status { font-weight: bold; text-transform: uppercase; }
</style>
</head>
<body>
<div class="header">
  <div>
    <h1>{{company}}</h1>
    {{with supportPhone}}<div class="muted">Customer care: {{.}}</div>{{end}}
  </div>
  <div>
    <div>Statement <strong>{{.Bill.BillNumber}}</strong></div>
    <div>Period {{.Bill.BillingPeriod}}</div>
    <div class="status">{{.Bill.Status}}</div>
  </div>
</div>

<table>
  <tr><th>Account</th><td>{{.Customer.AccountNumber}}</td><th>Bill date</th><td>{{formatDate .Bill.BillDate}}</td></tr>
  <tr><th>Customer</th><td>{{.Customer.Name}}</td><th>Due date</th><td>{{formatDate .Bill.DueDate}}</td></tr>
  <tr><th>Address</th><td>{{.Customer.Address}}{{with .Customer.City}}, {{.}}{{end}}</td><th>Customer type</th><td>{{.Customer.Type}}</td></tr>
  <tr><th>Meter</th><td>{{.Meter.MeterNumber}}{{with .Meter.Location}} ({{.}}){{end}}</td><th>Utility</th><td>{{title .Meter.UtilityType}}</td></tr>
</table>

<table>
  <thead><tr><th>Description</th><th class="num">Quantity</th><th class="num">Rate</th><th class="num">Amount</th></tr></thead>
  <tbody>
    <tr>
      <td>Consumption {{formatQuantity .Bill.PreviousReading ""}} &rarr; {{formatQuantity .Bill.CurrentReading ""}} ({{.Bill.TariffName}})</td>
      <td class="num">{{formatQuantity .Bill.Consumption .Bill.Unit}}</td>
      <td class="num">{{.Bill.RatePerUnit}}</td>
      <td class="num">{{formatMoney .Bill.ConsumptionCharge .Bill.Currency}}</td>
    </tr>
    <tr>
      <td>Fixed charge</td><td></td><td></td>
      <td class="num">{{formatMoney .Bill.FixedCharge .Bill.Currency}}</td>
    </tr>
    <tr class="total"><td colspan="3">Total</td><td class="num">{{formatMoney .Bill.TotalAmount .Bill.Currency}}</td></tr>
    <tr><td colspan="3">Paid</td><td class="num">{{formatMoney .Bill.PaidAmount .Bill.Currency}}</td></tr>
    <tr class="total"><td colspan="3">Amount due</td><td class="num">{{formatMoney .Bill.OutstandingAmount .Bill.Currency}}</td></tr>
  </tbody>
</table>

{{if .Payments}}
<table>
  <thead><tr><th>Payment date</th><th>Method</th><th>Reference</th><th>Status</th><th class="num">Amount</th></tr></thead>
  <tbody>
  {{range .Payments}}
    <tr>
      <td>{{formatDate .PaymentDate}}</td><td>{{.Method}}</td><td>{{.ReferenceNumber}}</td><td>{{.Status}}</td>
      <td class="num">{{formatMoney .Amount $.Bill.Currency}}</td>
    </tr>
  {{end}}
  </tbody>
</table>
{{end}}

{{if gt .Bill.DaysOverdue 0}}<p class="status">This bill is {{.Bill.DaysOverdue}} days overdue.</p>{{end}}
<p class="muted">Generated {{formatDateTime .GeneratedAt}}</p>
</body>
</html>
`
