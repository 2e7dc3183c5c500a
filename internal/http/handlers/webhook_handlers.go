package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teich/phone-gate-bridge/domain"
)

const twimlContentType = "text/xml; charset=utf-8"

// WebhookHandlers handles the Twilio voice webhook legs
type WebhookHandlers struct {
	flow          domain.CallFlowService
	verifier      domain.SignatureVerifier
	publicBaseURL string
}

// NewWebhookHandlers creates new webhook handlers. publicBaseURL is the
// externally visible scheme+host the telephony provider signs against, not
// the local listener address.
func NewWebhookHandlers(flow domain.CallFlowService, verifier domain.SignatureVerifier, publicBaseURL string) *WebhookHandlers {
	return &WebhookHandlers{
		flow:          flow,
		verifier:      verifier,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Voice handles the first webhook leg
func (h *WebhookHandlers) Voice(c *gin.Context) {
	params, ok := h.verifiedForm(c)
	if !ok {
		return
	}
	doc := h.flow.HandleVoice(c.Request.Context(), params["From"], params["CallSid"])
	c.Data(http.StatusOK, twimlContentType, []byte(doc))
}

// Confirm handles the confirmation webhook leg
func (h *WebhookHandlers) Confirm(c *gin.Context) {
	params, ok := h.verifiedForm(c)
	if !ok {
		return
	}
	doc := h.flow.HandleConfirm(c.Request.Context(), params["From"], params["CallSid"], strings.TrimSpace(params["Digits"]))
	c.Data(http.StatusOK, twimlContentType, []byte(doc))
}

// Health handles the liveness probe
func (h *WebhookHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// verifiedForm parses the POST form and checks the request signature. On
// failure it writes the 403 itself and reports ok=false; nothing else may
// run after a signature rejection.
func (h *WebhookHandlers) verifiedForm(c *gin.Context) (map[string]string, bool) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return nil, false
	}

	params := make(map[string]string, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	url := h.publicBaseURL + c.Request.URL.RequestURI()
	signature := c.GetHeader("X-Twilio-Signature")
	if !h.verifier.Verify(url, params, signature) {
		c.String(http.StatusForbidden, "forbidden")
		return nil, false
	}
	return params, true
}
