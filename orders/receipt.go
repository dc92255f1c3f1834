package orders

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"storefront/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// SignReference returns orderID|userID|signature for the receipt QR code.
func SignReference(secret []byte, orderID, userID string) string {
	data := orderID + "|" + userID
	return data + "|" + sign(secret, data)
}

// VerifyReference checks a payload produced by SignReference and returns its order id.
func VerifyReference(secret []byte, payload string) (string, bool) {
	i := strings.LastIndexByte(payload, '|')
	if i < 0 {
		return "", false
	}
	data, sig := payload[:i], payload[i+1:]
	if !hmac.Equal([]byte(sig), []byte(sign(secret, data))) {
		return "", false
	}
	orderID, _, _ := strings.Cut(data, "|")
	return orderID, true
}

func sign(secret []byte, data string) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Receipt renders an A4 PDF with the order lines and a signed QR reference.
func Receipt(o *models.Order, username string, secret []byte) ([]byte, error) {
	qrPNG, err := qrcode.Encode(SignReference(secret, o.ID, o.UserID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Order "+o.ID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, "Order: "+o.ID)
	pdf.Ln(6)
	pdf.Cell(0, 8, "Customer: "+username)
	pdf.Ln(6)
	pdf.Cell(0, 8, "Date: "+o.CreatedAt.Format("2006-01-02 15:04 MST"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Item", "B", 0, "", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, it := range o.Items {
		sub := it.Price.Mul(decimalFromInt(it.Quantity))
		pdf.CellFormat(90, 7, it.Title, "", 0, "", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprint(it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, "$"+it.Price.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, "$"+sub.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(140, 10, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(30, 10, "$"+o.TotalAmount.StringFixed(2), "T", 1, "R", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
