package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

// lineItemReq tolerates the naming variants storefront clients have shipped
// with (product_id/productId, quantity/qty) and normalizes them into one
// strict shape before anything reaches the core.
type lineItemReq struct {
	ProductID string
	Quantity  int
}

func (l *lineItemReq) UnmarshalJSON(b []byte) error {
	var raw struct {
		ProductID  string `json:"product_id"`
		ProductID2 string `json:"productId"`
		Quantity   int    `json:"quantity"`
		Qty        int    `json:"qty"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	l.ProductID = raw.ProductID
	if l.ProductID == "" {
		l.ProductID = raw.ProductID2
	}
	l.Quantity = raw.Quantity
	if l.Quantity == 0 {
		l.Quantity = raw.Qty
	}
	return nil
}

func toLineItems(items []lineItemReq) []usecase.LineItemInput {
	out := make([]usecase.LineItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, usecase.LineItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// currentUser pulls the identity the authz middleware resolved. An absent
// identity aborts with 401 before any core operation runs.
func currentUser(c *gin.Context) (userID, email string, ok bool) {
	userID = c.GetString("userID")
	email = c.GetString("userEmail")
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", "", false
	}
	return userID, email, true
}
