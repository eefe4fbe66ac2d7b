package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/dormhub/dorms-service/internal/utils"
)

type Config struct {
	AppName string
	AppPort string
	AppUrl  string
	Env     string

	// Database
	DBUrl string

	// Notification channels
	SendGridAPIKey       string
	TwilioAccountSID     string
	TwilioAuthToken      string
	FirebaseCredentials  []byte

	// Payment gateway
	VNPayTmnCode    string
	VNPayHashSecret string
	VNPayPaymentURL string
	VNPayReturnURL  string

	// Auth. Tokens are issued by the identity service; this service
	// only needs the verifying key.
	RSAPublicKey *rsa.PublicKey

	// LaunchDarkly flags
	LDFlag_SendgridFromEmail    string
	LDFlag_SendgridSandboxMode  bool
	LDFlag_TwilioFromPhone      string
	LDFlag_SeedDbWithTestData   bool
	LDFlag_InvoiceReadyFeeTypes []string
	LDFlag_ActivePaymentMethods []string
	LDFlag_CORSHighSecurity     bool
}

const LDConnectionTimeout = 5 * time.Second

// build-time overrides
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

func requireEnv(name string) string {
	val := os.Getenv(name)
	if val == "" {
		utils.Logger.Fatalf("%s env var is missing", name)
	}
	return val
}

func LoadConfig() *Config {
	if AppName == "" {
		AppName = "dorms-service"
	}
	if LDServerContextKey == "" {
		LDServerContextKey = AppName
	}
	if LDServerContextKind == "" {
		LDServerContextKind = "service"
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	env := requireEnv("ENV")
	appUrl := requireEnv("APP_URL")
	appPort := requireEnv("APP_PORT")
	dbURL := requireEnv("DB_URL")

	sgAPIKey := requireEnv("SENDGRID_API_KEY")
	twilioSID := requireEnv("TWILIO_ACCOUNT_SID")
	twilioToken := requireEnv("TWILIO_AUTH_TOKEN")

	fbCredsB64 := requireEnv("FIREBASE_CREDENTIALS_JSON_BASE64")
	fbCreds, err := base64.StdEncoding.DecodeString(fbCredsB64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("FIREBASE_CREDENTIALS_JSON_BASE64 is not valid base64")
	}

	vnpTmnCode := requireEnv("VNPAY_TMN_CODE")
	vnpHashSecret := requireEnv("VNPAY_HASH_SECRET")
	vnpPaymentURL := requireEnv("VNPAY_PAYMENT_URL")
	vnpReturnURL := requireEnv("VNPAY_RETURN_URL")

	pubB64 := requireEnv("RSA_PUBLIC_KEY_BASE64")
	pubPEM, _ := base64.StdEncoding.DecodeString(pubB64)
	if block, _ := pem.Decode(pubPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}

	ldSDKKey := requireEnv("LD_SDK_KEY")
	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !ldClient.Initialized() {
		ldClient.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	defer ldClient.Close()

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	sgFromFlag, err := ldClient.StringVariation("sendgrid_from_email", ctx, "")
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_from_email flag")
	}
	utils.Logger.Debugf("sendgrid_from_email flag: %s", sgFromFlag)
	if sgFromFlag == "" {
		utils.Logger.Warn("sendgrid_from_email flag is empty, defaulting to no-reply@dormhub.io")
		sgFromFlag = "no-reply@dormhub.io"
	}

	sgSandboxFlag, err := ldClient.BoolVariation("sendgrid_sandbox_mode", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_sandbox_mode flag")
	}
	utils.Logger.Debugf("sendgrid_sandbox_mode flag: %t", sgSandboxFlag)

	twilioFromFlag, err := ldClient.StringVariation("twilio_from_phone", ctx, "")
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving twilio_from_phone flag")
	}
	utils.Logger.Debugf("twilio_from_phone flag: %s", twilioFromFlag)
	if twilioFromFlag == "" {
		utils.Logger.Warn("twilio_from_phone flag is empty, defaulting to +10005550006")
		twilioFromFlag = "+10005550006"
	}

	seedDbWithTestDataFlag, err := ldClient.BoolVariation("seed_db_with_test_data", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving seed_db_with_test_data flag")
	}
	utils.Logger.Debugf("seed_db_with_test_data flag: %t", seedDbWithTestDataFlag)

	readyFeeTypesFlag, err := ldClient.StringVariation("invoice_ready_fee_types", ctx, "")
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving invoice_ready_fee_types flag")
	}
	utils.Logger.Debugf("invoice_ready_fee_types flag: %s", readyFeeTypesFlag)

	activeMethodsFlag, err := ldClient.StringVariation("active_payment_methods", ctx, "vnpay")
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving active_payment_methods flag")
	}
	utils.Logger.Debugf("active_payment_methods flag: %s", activeMethodsFlag)

	corsHighSecurityFlag, err := ldClient.BoolVariation("cors_high_security", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving cors_high_security flag")
	}
	utils.Logger.Debugf("cors_high_security flag: %t", corsHighSecurityFlag)

	return &Config{
		AppName:             AppName,
		AppPort:             appPort,
		AppUrl:              appUrl,
		Env:                 env,
		DBUrl:               dbURL,
		SendGridAPIKey:      sgAPIKey,
		TwilioAccountSID:    twilioSID,
		TwilioAuthToken:     twilioToken,
		FirebaseCredentials: fbCreds,
		VNPayTmnCode:        vnpTmnCode,
		VNPayHashSecret:     vnpHashSecret,
		VNPayPaymentURL:     vnpPaymentURL,
		VNPayReturnURL:      vnpReturnURL,
		RSAPublicKey:        pubKey,

		LDFlag_SendgridFromEmail:    sgFromFlag,
		LDFlag_SendgridSandboxMode:  sgSandboxFlag,
		LDFlag_TwilioFromPhone:      twilioFromFlag,
		LDFlag_SeedDbWithTestData:   seedDbWithTestDataFlag,
		LDFlag_InvoiceReadyFeeTypes: splitCSVFlag(readyFeeTypesFlag),
		LDFlag_ActivePaymentMethods: splitCSVFlag(activeMethodsFlag),
		LDFlag_CORSHighSecurity:     corsHighSecurityFlag,
	}
}

func splitCSVFlag(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
