// Package vnpay implements the VNPay signed-redirect / IPN scheme:
// request params are key-sorted, URL-encoded and signed with
// HMAC-SHA512 over the shared secret; the hex signature travels as the
// vnp_SecureHash query parameter.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	Version = "2.1.0"
	Command = "pay"

	ParamSecureHash     = "vnp_SecureHash"
	ParamSecureHashType = "vnp_SecureHashType"
	ParamTxnRef         = "vnp_TxnRef"
	ParamResponseCode   = "vnp_ResponseCode"
	ParamAmount         = "vnp_Amount"

	// Gateway response/ack codes.
	RspSuccess          = "00"
	RspOrderNotFound    = "01"
	RspOrderAlreadyDone = "02"
	RspInvalidChecksum  = "97"
)

// Client signs outbound payment requests and verifies inbound
// callbacks for one merchant (terminal) account.
type Client struct {
	TmnCode    string
	HashSecret string
	PaymentURL string
	ReturnURL  string
}

func NewClient(tmnCode, hashSecret, paymentURL, returnURL string) *Client {
	return &Client{
		TmnCode:    tmnCode,
		HashSecret: hashSecret,
		PaymentURL: paymentURL,
		ReturnURL:  returnURL,
	}
}

// PaymentRequest describes one payment attempt. Amount is in the major
// currency unit; the wire format carries minor units (x100).
type PaymentRequest struct {
	TxnRef    string
	Amount    int64
	OrderInfo string
	OrderType string
	Locale    string
	IPAddr    string
	BankCode  string
	CreatedAt time.Time
}

// BuildPaymentURL returns the signed redirect URL for the gateway's
// hosted payment page.
func (c *Client) BuildPaymentURL(req PaymentRequest) string {
	locale := req.Locale
	if locale == "" {
		locale = "vn"
	}
	params := url.Values{}
	params.Set("vnp_Version", Version)
	params.Set("vnp_Command", Command)
	params.Set("vnp_TmnCode", c.TmnCode)
	params.Set(ParamAmount, strconv.FormatInt(req.Amount*100, 10))
	params.Set("vnp_CurrCode", "VND")
	params.Set(ParamTxnRef, req.TxnRef)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", req.OrderType)
	params.Set("vnp_Locale", locale)
	params.Set("vnp_CreateDate", req.CreatedAt.Format("20060102150405"))
	params.Set("vnp_IpAddr", req.IPAddr)
	params.Set("vnp_ReturnUrl", c.ReturnURL)
	if req.BankCode != "" {
		params.Set("vnp_BankCode", req.BankCode)
	}

	query := params.Encode() // sorted by key, same canonical form the gateway hashes
	return fmt.Sprintf("%s?%s&%s=%s", c.PaymentURL, query, ParamSecureHash, c.sign(query))
}

// VerifyResponse recomputes the signature over every callback field
// except vnp_SecureHash and vnp_SecureHashType and compares it, in
// constant time, with the one the gateway sent.
func (c *Client) VerifyResponse(data map[string]string) bool {
	got, ok := data[ParamSecureHash]
	if !ok || got == "" {
		return false
	}
	params := url.Values{}
	for k, v := range data {
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		params.Set(k, v)
	}
	want := c.sign(params.Encode())
	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}

func (c *Client) sign(query string) string {
	mac := hmac.New(sha512.New, []byte(c.HashSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// InvoiceIDFromTxnRef recovers the invoice id from an order reference
// of the form "{invoiceID}_{timestamp}".
func InvoiceIDFromTxnRef(txnRef string) string {
	if i := strings.Index(txnRef, "_"); i >= 0 {
		return txnRef[:i]
	}
	return txnRef
}
