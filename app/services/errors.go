package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Business errors. Their messages are shown to shoppers as-is; wrap them with
// %w to add context for logs.
var (
	ErrNotFound           = errors.New("Item não encontrado.")
	ErrValidation         = errors.New("Dados inválidos.")
	ErrInvalidQuantity    = errors.New("Por favor, insira um número válido.")
	ErrInvalidDate        = errors.New("Data inválida. Use o formato AAAA-MM-DD.")
	ErrEmptyCart          = errors.New("Seu carrinho está vazio.")
	ErrBelowMinimumOrder  = errors.New("Seu pedido deve ter um valor mínimo de R$ 10,00.")
	ErrInsufficientStock  = errors.New("Estoque insuficiente para concluir o pedido.")
	ErrPaymentDeclined    = errors.New("Pagamento recusado.")
	ErrCartItemLimit      = errors.New("Quantidade máxima de 50 unidades por item atingida.")
	ErrMissingInput       = errors.New("CEP não fornecido")
	ErrQuoteUnavailable   = errors.New("Não foi possível calcular o frete.")
	ErrNotPurchased       = errors.New("Apenas clientes que compraram este produto podem avaliá-lo.")
	ErrConflict           = errors.New("Nome de usuário ou CPF já cadastrado.")
	ErrInvalidCredentials = errors.New("Usuário ou senha inválidos.")
)

// notFound turns gorm.ErrRecordNotFound into ErrNotFound, keeping what was
// looked up in the message.
func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %d: %w", what, id, err)
}
