// Package handler содержит HTTP-обработчики API шлюза заказов столовой.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/cantina-gateway/internal/model"
	"github.com/mmeshcher/cantina-gateway/internal/validation"
)

// Действия, принимаемые единственной точкой входа шлюза.
const (
	actionGetAddress        = "get_address"
	actionSaveAddress       = "save_address"
	actionCheckRegistration = "check_registration"
	actionMakeOrderTech     = "make_order_tech"
	actionMakeOrderPoke     = "make_order_poke"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	CheckRegistration(ctx context.Context, rm string) (*model.Result, error)
	GetAddress(ctx context.Context, cep string) *model.Result
	SaveAddress(ctx context.Context, rm, cep string, numero int, nome string) (*model.Result, error)
	MakeOrder(ctx context.Context, kind model.StoreKind, rm string, items []any, valor float64) (*model.Result, error)
}

// Handler реализует HTTP-обработчики API шлюза заказов.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

// envelope содержит дискриминантное поле запроса.
type envelope struct {
	Action string `json:"action"`
}

// response — единый формат ответа шлюза.
type response struct {
	Action          string `json:"action"`
	ResponsePayload any    `json:"response_payload"`
}

// fieldError описывает одну ошибку валидации схемы запроса.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type getAddressPayload struct {
	CEP string `json:"cep"`
}

type saveAddressPayload struct {
	RM     string `json:"rm"`
	CEP    string `json:"cep"`
	Numero *int   `json:"numero"`
	Nome   string `json:"nome"`
}

type checkRegistrationPayload struct {
	RM string `json:"rm"`
}

type makeOrderTechPayload struct {
	RM      string   `json:"rm"`
	Produto string   `json:"produto"`
	Marca   string   `json:"marca"`
	Valor   *float64 `json:"valor"`
}

type makeOrderPokePayload struct {
	RM       string   `json:"rm"`
	Tamanho  string   `json:"tamanho"`
	Base     string   `json:"base"`
	Topping  string   `json:"topping"`
	Crunch   string   `json:"crunch"`
	Proteina string   `json:"proteina"`
	Molho    string   `json:"molho"`
	Valor    *float64 `json:"valor"`
}

// Dispatch разбирает конверт запроса, валидирует данные действия и
// вызывает соответствующую операцию. Ошибки схемы возвращаются до
// бизнес-логики, бизнес-ошибки — всегда внутри response_payload.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	switch env.Action {
	case actionGetAddress:
		h.handleGetAddress(w, r, body)
	case actionSaveAddress:
		h.handleSaveAddress(w, r, body)
	case actionCheckRegistration:
		h.handleCheckRegistration(w, r, body)
	case actionMakeOrderTech:
		h.handleMakeOrderTech(w, r, body)
	case actionMakeOrderPoke:
		h.handleMakeOrderPoke(w, r, body)
	default:
		h.writeResponse(w, env.Action, &model.Result{Error: true, Detail: "Invalid action"})
	}
}

func (h *Handler) handleGetAddress(w http.ResponseWriter, r *http.Request, body []byte) {
	var p getAddressPayload
	if !h.decodePayload(w, body, &p) {
		return
	}

	if !validation.IsValidCEP(p.CEP) {
		h.writeValidationError(w, fieldError{Field: "cep", Message: "cep must match ^\\d{8}$"})
		return
	}

	h.writeResponse(w, actionGetAddress, h.service.GetAddress(r.Context(), p.CEP))
}

func (h *Handler) handleSaveAddress(w http.ResponseWriter, r *http.Request, body []byte) {
	var p saveAddressPayload
	if !h.decodePayload(w, body, &p) {
		return
	}

	var details []fieldError
	if !validation.IsValidRM(p.RM) {
		details = append(details, fieldError{Field: "rm", Message: "rm must match ^\\d{5,6}$"})
	}
	if !validation.IsValidCEP(p.CEP) {
		details = append(details, fieldError{Field: "cep", Message: "cep must match ^\\d{8}$"})
	}
	if p.Numero == nil {
		details = append(details, fieldError{Field: "numero", Message: "numero is required"})
	}
	if p.Nome == "" {
		details = append(details, fieldError{Field: "nome", Message: "nome is required"})
	}
	if len(details) > 0 {
		h.writeValidationError(w, details...)
		return
	}

	result, err := h.service.SaveAddress(r.Context(), p.RM, p.CEP, *p.Numero, p.Nome)
	if err != nil {
		h.logger.Error("save address error", zap.Error(err), zap.String("rm", p.RM))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeResponse(w, actionSaveAddress, result)
}

func (h *Handler) handleCheckRegistration(w http.ResponseWriter, r *http.Request, body []byte) {
	var p checkRegistrationPayload
	if !h.decodePayload(w, body, &p) {
		return
	}

	if !validation.IsValidRM(p.RM) {
		h.writeValidationError(w, fieldError{Field: "rm", Message: "rm must match ^\\d{5,6}$"})
		return
	}

	result, err := h.service.CheckRegistration(r.Context(), p.RM)
	if err != nil {
		h.logger.Error("check registration error", zap.Error(err), zap.String("rm", p.RM))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeResponse(w, actionCheckRegistration, result)
}

func (h *Handler) handleMakeOrderTech(w http.ResponseWriter, r *http.Request, body []byte) {
	var p makeOrderTechPayload
	if !h.decodePayload(w, body, &p) {
		return
	}

	var details []fieldError
	if !validation.IsValidRM(p.RM) {
		details = append(details, fieldError{Field: "rm", Message: "rm must match ^\\d{5,6}$"})
	}
	if p.Produto == "" {
		details = append(details, fieldError{Field: "produto", Message: "produto is required"})
	}
	if p.Marca == "" {
		details = append(details, fieldError{Field: "marca", Message: "marca is required"})
	}
	if p.Valor == nil {
		details = append(details, fieldError{Field: "valor", Message: "valor is required"})
	}
	if len(details) > 0 {
		h.writeValidationError(w, details...)
		return
	}

	result, err := h.service.MakeOrder(r.Context(), model.StoreTech, p.RM, []any{p.Produto, p.Marca}, *p.Valor)
	if err != nil {
		h.logger.Error("make order error", zap.Error(err), zap.String("rm", p.RM), zap.String("store", string(model.StoreTech)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeResponse(w, actionMakeOrderTech, result)
}

func (h *Handler) handleMakeOrderPoke(w http.ResponseWriter, r *http.Request, body []byte) {
	var p makeOrderPokePayload
	if !h.decodePayload(w, body, &p) {
		return
	}

	var details []fieldError
	if !validation.IsValidRM(p.RM) {
		details = append(details, fieldError{Field: "rm", Message: "rm must match ^\\d{5,6}$"})
	}

	required := []struct {
		field string
		value string
	}{
		{"tamanho", p.Tamanho},
		{"base", p.Base},
		{"topping", p.Topping},
		{"crunch", p.Crunch},
		{"proteina", p.Proteina},
		{"molho", p.Molho},
	}
	for _, f := range required {
		if f.value == "" {
			details = append(details, fieldError{Field: f.field, Message: f.field + " is required"})
		}
	}
	if p.Valor == nil {
		details = append(details, fieldError{Field: "valor", Message: "valor is required"})
	}
	if len(details) > 0 {
		h.writeValidationError(w, details...)
		return
	}

	items := []any{p.Tamanho, p.Base, p.Topping, p.Crunch, p.Proteina, p.Molho}

	result, err := h.service.MakeOrder(r.Context(), model.StorePoke, p.RM, items, *p.Valor)
	if err != nil {
		h.logger.Error("make order error", zap.Error(err), zap.String("rm", p.RM), zap.String("store", string(model.StorePoke)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeResponse(w, actionMakeOrderPoke, result)
}

func (h *Handler) decodePayload(w http.ResponseWriter, body []byte, dst any) bool {
	if err := json.Unmarshal(body, dst); err != nil {
		h.writeValidationError(w, fieldError{Field: "body", Message: "payload fields have invalid types"})
		return false
	}
	return true
}

func (h *Handler) writeValidationError(w http.ResponseWriter, details ...fieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)

	if err := json.NewEncoder(w).Encode(map[string]any{"detail": details}); err != nil {
		h.logger.Error("encode validation error", zap.Error(err))
	}
}

func (h *Handler) writeResponse(w http.ResponseWriter, action string, payload *model.Result) {
	w.Header().Set("Content-Type", "application/json")

	resp := response{
		Action:          action,
		ResponsePayload: payload,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}
