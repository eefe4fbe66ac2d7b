package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return NewClient("TESTTMN1", "test-hash-secret", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html", "https://dorms.example.com/api/v1/payments/vnpay/return")
}

func TestBuildPaymentURLDeterministic(t *testing.T) {
	c := testClient()
	req := PaymentRequest{
		TxnRef:    "3f1c9a2e_1735689600",
		Amount:    150000,
		OrderInfo: "Dormitory invoice INV-202501-ABCD1234 for 01/2025",
		OrderType: "billpayment",
		Locale:    "vn",
		IPAddr:    "203.0.113.7",
		CreatedAt: time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
	}

	u1 := c.BuildPaymentURL(req)
	u2 := c.BuildPaymentURL(req)
	require.Equal(t, u1, u2, "same request must produce the same signed URL")

	parsed, err := url.Parse(u1)
	require.NoError(t, err)
	q := parsed.Query()

	require.Equal(t, "2.1.0", q.Get("vnp_Version"))
	require.Equal(t, "pay", q.Get("vnp_Command"))
	require.Equal(t, "TESTTMN1", q.Get("vnp_TmnCode"))
	require.Equal(t, "15000000", q.Get(ParamAmount), "amount travels in minor units")
	require.Equal(t, "20250102150405", q.Get("vnp_CreateDate"))
	require.Equal(t, "3f1c9a2e_1735689600", q.Get(ParamTxnRef))
	require.NotEmpty(t, q.Get(ParamSecureHash))

	// The signature must cover the canonical sorted encoding of every
	// parameter except the hash itself.
	q.Del(ParamSecureHash)
	mac := hmac.New(sha512.New, []byte(c.HashSecret))
	mac.Write([]byte(q.Encode()))
	require.Equal(t, hex.EncodeToString(mac.Sum(nil)), parsed.Query().Get(ParamSecureHash))
}

func TestBuildPaymentURLHashIsLastParam(t *testing.T) {
	c := testClient()
	u := c.BuildPaymentURL(PaymentRequest{
		TxnRef:    "ref_1",
		Amount:    1,
		OrderInfo: "x",
		OrderType: "billpayment",
		IPAddr:    "127.0.0.1",
		CreatedAt: time.Now(),
	})
	require.Contains(t, u, "&"+ParamSecureHash+"=")
	require.True(t, strings.HasPrefix(u, c.PaymentURL+"?"))
}

func signedCallback(c *Client, overrides map[string]string) map[string]string {
	params := url.Values{}
	params.Set(ParamTxnRef, "11111111-1111-1111-1111-111111111111_1735689600")
	params.Set(ParamResponseCode, RspSuccess)
	params.Set(ParamAmount, "15000000")
	params.Set("vnp_TransactionNo", "14226112")
	params.Set("vnp_BankCode", "NCB")
	for k, v := range overrides {
		params.Set(k, v)
	}

	mac := hmac.New(sha512.New, []byte(c.HashSecret))
	mac.Write([]byte(params.Encode()))

	data := make(map[string]string)
	for k := range params {
		data[k] = params.Get(k)
	}
	data[ParamSecureHash] = hex.EncodeToString(mac.Sum(nil))
	return data
}

func TestVerifyResponseRoundTrip(t *testing.T) {
	c := testClient()
	data := signedCallback(c, nil)
	require.True(t, c.VerifyResponse(data))
}

func TestVerifyResponseUppercaseHash(t *testing.T) {
	c := testClient()
	data := signedCallback(c, nil)
	data[ParamSecureHash] = strings.ToUpper(data[ParamSecureHash])
	require.True(t, c.VerifyResponse(data), "gateway may send the hex digest uppercased")
}

func TestVerifyResponseIgnoresHashTypeParam(t *testing.T) {
	c := testClient()
	data := signedCallback(c, nil)
	data[ParamSecureHashType] = "HMACSHA512"
	require.True(t, c.VerifyResponse(data))
}

func TestVerifyResponseTamper(t *testing.T) {
	c := testClient()

	fields := []string{ParamTxnRef, ParamResponseCode, ParamAmount, "vnp_TransactionNo", "vnp_BankCode"}
	for _, field := range fields {
		data := signedCallback(c, nil)
		data[field] = data[field] + "x"
		require.False(t, c.VerifyResponse(data), "tampering with %s must invalidate the signature", field)
	}
}

func TestVerifyResponseMissingHash(t *testing.T) {
	c := testClient()
	data := signedCallback(c, nil)
	delete(data, ParamSecureHash)
	require.False(t, c.VerifyResponse(data))

	data = signedCallback(c, nil)
	data[ParamSecureHash] = ""
	require.False(t, c.VerifyResponse(data))
}

func TestVerifyResponseWrongSecret(t *testing.T) {
	c := testClient()
	data := signedCallback(c, nil)

	other := NewClient(c.TmnCode, "other-secret", c.PaymentURL, c.ReturnURL)
	require.False(t, other.VerifyResponse(data))
}

func TestInvoiceIDFromTxnRef(t *testing.T) {
	require.Equal(t, "abc", InvoiceIDFromTxnRef("abc_1700000000"))
	require.Equal(t, "abc", InvoiceIDFromTxnRef("abc_17_00"))
	require.Equal(t, "abc", InvoiceIDFromTxnRef("abc"))
	require.Equal(t, "", InvoiceIDFromTxnRef("_123"))
}
