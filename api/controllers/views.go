package controllers

import (
	"github.com/adityarahmanda/kopitera-backend/internal/checkout"
	"github.com/adityarahmanda/kopitera-backend/internal/promotion"
	"github.com/shopspring/decimal"
)

type cartItemView struct {
	ProductID int64  `json:"productId"`
	UniqueKey string `json:"uniqueKey"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type sessionView struct {
	SessionKey         string           `json:"sessionKey"`
	Step               string           `json:"step"`
	Items              []cartItemView   `json:"items"`
	TotalItems         int              `json:"totalItems"`
	Subtotal           int64            `json:"subtotal"`
	Discount           int64            `json:"discount"`
	Notes              string           `json:"notes,omitempty"`
	SelectedPromotions []int64          `json:"selectedPromotions,omitempty"`
	Totals             *checkout.Totals `json:"totals,omitempty"`
}

func newSessionView(session *checkout.Session) sessionView {
	items := session.Items()
	views := make([]cartItemView, 0, len(items))
	for _, item := range items {
		views = append(views, cartItemView{
			ProductID: item.ProductID,
			UniqueKey: item.UniqueKey,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	view := sessionView{
		SessionKey:         session.Key,
		Step:               session.Step().String(),
		Items:              views,
		TotalItems:         session.TotalItems(),
		Subtotal:           session.TotalPrice(),
		Discount:           session.Discount(),
		Notes:              session.Notes(),
		SelectedPromotions: session.SelectedPromotions(),
	}
	if totals, ok := session.Totals(); ok {
		view.Totals = &totals
	}
	return view
}

type promotionView struct {
	ID                    int64           `json:"promotionId"`
	Name                  string          `json:"name"`
	Description           string          `json:"description,omitempty"`
	Type                  string          `json:"promotionType"`
	DiscountValue         decimal.Decimal `json:"discountValue"`
	MinimumPurchaseAmount int64           `json:"minimumPurchaseAmount,omitempty"`
	MaxDiscountAmount     int64           `json:"maxDiscountAmount,omitempty"`
	Selected              bool            `json:"selected"`
	Discount              int64           `json:"discount"`
}

type promotionListView struct {
	Promotions []promotionView `json:"promotions"`
	Loading    bool            `json:"loading"`
	Discount   int64           `json:"discount"`
}

func newPromotionListView(session *checkout.Session) promotionListView {
	available := session.AvailablePromotions()
	totalPrice := session.TotalPrice()
	views := make([]promotionView, 0, len(available))
	for _, promo := range available {
		views = append(views, newPromotionView(promo, session, totalPrice))
	}
	return promotionListView{
		Promotions: views,
		Loading:    session.PromotionsLoading(),
		Discount:   session.Discount(),
	}
}

func newPromotionView(promo promotion.Promotion, session *checkout.Session, totalPrice int64) promotionView {
	selected := false
	for _, id := range session.SelectedPromotions() {
		if id == promo.ID {
			selected = true
			break
		}
	}
	return promotionView{
		ID:                    promo.ID,
		Name:                  promo.Name,
		Description:           promo.Description,
		Type:                  promo.Type.String(),
		DiscountValue:         promo.DiscountValue,
		MinimumPurchaseAmount: promo.MinimumPurchaseAmount,
		MaxDiscountAmount:     promo.MaxDiscountAmount,
		Selected:              selected,
		Discount:              promo.DiscountFor(totalPrice),
	}
}
