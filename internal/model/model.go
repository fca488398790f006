// Package model содержит доменные сущности шлюза заказов столовой.
package model

// Address содержит адресные поля, полученные одним запросом к ViaCEP.
// Поля cep/rua/bairro/cidade/estado всегда заполняются вместе.
type Address struct {
	CEP    string `json:"cep"`
	Rua    string `json:"rua"`
	Bairro string `json:"bairro"`
	Cidade string `json:"cidade"`
	Estado string `json:"estado"`
}

// Record описывает сохранённый адрес клиента: адрес, номер дома и имя получателя.
// Значение nil означает, что RM известен, но адрес ещё не зарегистрирован.
type Record struct {
	Address
	Numero int    `json:"numero"`
	Nome   string `json:"nome"`
}

// RegistrationStatus описывает статус регистрации клиента по его RM.
type RegistrationStatus string

const (
	StatusNotFound     RegistrationStatus = "not_found"
	StatusUnregistered RegistrationStatus = "unregistered_address"
	StatusRegistered   RegistrationStatus = "registered"
)

// Статусы бизнес-результатов операций шлюза.
const (
	StatusUpdated      = "updated"
	StatusOrderMade    = "order_made"
	StatusAPIError     = "api_error"
	StatusMissingData  = "missing_data"
	StatusUnknownError = "unknown_error"
)

// Result — тегированный результат бизнес-операции. Все бизнес-ошибки
// возвращаются значениями Result и никогда не поднимаются наружу исключением.
type Result struct {
	Error  bool   `json:"error"`
	Status string `json:"status,omitempty"`
	Detail string `json:"detail,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// StoreKind определяет магазин, в журнал которого добавляется заказ.
type StoreKind string

const (
	StoreTech StoreKind = "tech"
	StorePoke StoreKind = "poke"
)

// TabName возвращает имя вкладки таблицы, выступающей журналом заказов магазина.
func (k StoreKind) TabName() string {
	if k == StorePoke {
		return "Poke Store"
	}
	return "Tech Store"
}
