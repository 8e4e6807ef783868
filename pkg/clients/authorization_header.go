package clients

import (
	"net/http"
)

// AuthEngine проставляет учетные данные в исходящий запрос.
type AuthEngine interface {
	SetApiKey(request *http.Request)
}

// BearerAuth -- OAuth-токен Яндекс.Маркета.
type BearerAuth struct {
	apiKey string
}

func (b *BearerAuth) SetApiKey(request *http.Request) {
	request.Header.Set("Authorization", "Bearer "+b.apiKey)
}

// NewBearerAuth возвращает nil-интерфейс для пустого токена: клиент ходит без авторизации.
func NewBearerAuth(apiKey string) AuthEngine {
	if apiKey == "" {
		return nil
	}
	return &BearerAuth{apiKey: apiKey}
}

// ClientKeyAuth -- пара Client-Id / Api-Key продавца Ozon.
type ClientKeyAuth struct {
	clientID string
	apiKey   string
}

func NewClientKeyAuth(clientID, apiKey string) AuthEngine {
	if clientID == "" || apiKey == "" {
		return nil
	}
	return &ClientKeyAuth{clientID: clientID, apiKey: apiKey}
}

func (c *ClientKeyAuth) SetApiKey(request *http.Request) {
	request.Header.Set("Client-Id", c.clientID)
	request.Header.Set("Api-Key", c.apiKey)
}
