// Package service реализует бизнес-логику шлюза заказов столовой.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mmeshcher/cantina-gateway/internal/model"
	"github.com/mmeshcher/cantina-gateway/internal/spreadsheet"
	"github.com/mmeshcher/cantina-gateway/internal/viacep"
)

// Store описывает контракт хранилища записей адресов, используемый сервисом.
type Store interface {
	Load(ctx context.Context) (map[string]*model.Record, error)
	Save(ctx context.Context, records map[string]*model.Record) error
	Close() error
}

// OrderLog описывает контракт журнала заказов.
type OrderLog interface {
	AppendRow(ctx context.Context, tab string, row []any) error
}

// Service содержит бизнес-логику шлюза заказов.
type Service struct {
	store    Store
	cep      *viacep.Client
	orderLog OrderLog
	tz       *time.Location
}

// NewService создаёт сервис с указанным хранилищем, клиентом ViaCEP и журналом заказов.
func NewService(store Store, cepClient *viacep.Client, orderLog OrderLog) *Service {
	tz, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		tz = time.FixedZone("-03", -3*60*60)
	}

	return &Service{
		store:    store,
		cep:      cepClient,
		orderLog: orderLog,
		tz:       tz,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// classifyRegistration классифицирует RM по снимку хранилища.
// Чистая функция: отсутствующий RM — not_found, RM с пустым адресом —
// unregistered_address, иначе — registered с данными записи.
func classifyRegistration(records map[string]*model.Record, rm string) (*model.Result, *model.Record) {
	rec, ok := records[rm]
	if !ok {
		return &model.Result{
			Error:  true,
			Status: string(model.StatusNotFound),
			Detail: fmt.Sprintf("RM %s not found in the database.", rm),
		}, nil
	}

	if rec == nil {
		return &model.Result{
			Error:  true,
			Status: string(model.StatusUnregistered),
			Detail: fmt.Sprintf("RM %s found in the database, but its address is None.", rm),
		}, nil
	}

	return &model.Result{
		Error:  false,
		Status: string(model.StatusRegistered),
		Detail: fmt.Sprintf("RM %s found in the database.", rm),
		Data:   rec,
	}, rec
}

// CheckRegistration возвращает статус регистрации клиента по его RM.
// Ошибка ввода-вывода хранилища передаётся вызывающему как есть.
func (s *Service) CheckRegistration(ctx context.Context, rm string) (*model.Result, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	result, _ := classifyRegistration(records, rm)
	return result, nil
}

// GetAddress запрашивает адрес по CEP у внешнего сервиса.
// Все сбои внешнего сервиса возвращаются мягкой ошибкой в Result.
func (s *Service) GetAddress(ctx context.Context, cep string) *model.Result {
	addr, err := s.cep.GetAddress(ctx, cep)
	if err != nil {
		return &model.Result{Error: true, Detail: err.Error()}
	}

	return &model.Result{Error: false, Data: addr}
}

// SaveAddress сохраняет адрес клиента: разрешает CEP и затирает запись в хранилище.
// RM в состоянии unregistered_address допускается, блокирует только not_found.
func (s *Service) SaveAddress(ctx context.Context, rm, cep string, numero int, nome string) (*model.Result, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	check, _ := classifyRegistration(records, rm)
	if check.Status == string(model.StatusNotFound) {
		return check, nil
	}

	addr, err := s.cep.GetAddress(ctx, cep)
	if err != nil {
		return &model.Result{Error: true, Detail: err.Error()}, nil
	}

	records[rm] = &model.Record{
		Address: *addr,
		Numero:  numero,
		Nome:    nome,
	}

	if err := s.store.Save(ctx, records); err != nil {
		return nil, err
	}

	return &model.Result{
		Error:  false,
		Status: model.StatusUpdated,
		Data:   fmt.Sprintf("Address for RM %s updated successfully.", rm),
	}, nil
}

// MakeOrder добавляет заказ в журнал магазина. Заказ принимается только от
// зарегистрированного RM; все сбои записи возвращаются значениями Result.
func (s *Service) MakeOrder(ctx context.Context, kind model.StoreKind, rm string, items []any, valor float64) (*model.Result, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	check, rec := classifyRegistration(records, rm)
	if check.Error {
		return check, nil
	}

	return s.appendOrder(ctx, kind, rm, items, valor, rec), nil
}

func (s *Service) appendOrder(ctx context.Context, kind model.StoreKind, rm string, items []any, valor float64, rec *model.Record) *model.Result {
	if field, ok := missingAddressField(rec); ok {
		return &model.Result{
			Error:  true,
			Status: model.StatusMissingData,
			Detail: fmt.Sprintf("Missing data in address details: '%s'", field),
		}
	}

	if s.orderLog == nil {
		return &model.Result{
			Error:  true,
			Status: model.StatusUnknownError,
			Detail: "An unknown error occurred: order log is not configured",
		}
	}

	timestamp := time.Now().In(s.tz).Format("2006-01-02 15:04:05")

	row := make([]any, 0, len(items)+10)
	row = append(row, timestamp, rm)
	row = append(row, items...)
	row = append(row, valor, rec.CEP, rec.Rua, rec.Numero, rec.Bairro, rec.Cidade, rec.Estado, rec.Nome)

	if err := s.orderLog.AppendRow(ctx, kind.TabName(), row); err != nil {
		if spreadsheet.IsAPIError(err) {
			return &model.Result{
				Error:  true,
				Status: model.StatusAPIError,
				Detail: fmt.Sprintf("Error occurred while accessing Google Sheets API: %s", err),
			}
		}
		return &model.Result{
			Error:  true,
			Status: model.StatusUnknownError,
			Detail: fmt.Sprintf("An unknown error occurred: %s", err),
		}
	}

	return &model.Result{
		Error:  false,
		Status: model.StatusOrderMade,
		Detail: fmt.Sprintf("Order for RM %s made successfully.", rm),
	}
}

func missingAddressField(rec *model.Record) (string, bool) {
	fields := []struct {
		name  string
		value string
	}{
		{"cep", rec.CEP},
		{"rua", rec.Rua},
		{"bairro", rec.Bairro},
		{"cidade", rec.Cidade},
		{"estado", rec.Estado},
		{"nome", rec.Nome},
	}

	for _, f := range fields {
		if f.value == "" {
			return f.name, true
		}
	}

	return "", false
}
