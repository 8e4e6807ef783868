package syncer

import (
	"context"
	"fmt"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/internal/core/services"
	"iter"
)

const opCatalog = "catalog.read"

// Offers лениво обходит каталог постранично, начиная со startToken.
// Следующая страница запрашивается только когда потребитель дочитал текущую.
// Ошибка отдается вторым значением, после нее итерация заканчивается.
func Offers(ctx context.Context, reader services.CatalogReader, startToken string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		token := startToken
		seen := map[string]struct{}{}
		if token != "" {
			seen[token] = struct{}{}
		}
		for {
			if err := ctx.Err(); err != nil {
				yield("", errs.Network(opCatalog, err))
				return
			}
			page, err := reader.ReadCatalogPage(ctx, token)
			if err != nil {
				yield("", fmt.Errorf("page %q: %w", token, err))
				return
			}
			for _, id := range page.OfferIDs {
				if !yield(id, nil) {
					return
				}
			}
			if page.NextToken == "" {
				return
			}
			// сервер вернул уже пройденный токен -- иначе обход не кончится
			if _, dup := seen[page.NextToken]; dup {
				yield("", errs.Formatf(opCatalog, "page token %q repeated", page.NextToken))
				return
			}
			seen[page.NextToken] = struct{}{}
			token = page.NextToken
		}
	}
}

// CollectOffers читает весь каталог. Повторы offer id отбрасываются, порядок сохраняется.
func CollectOffers(ctx context.Context, reader services.CatalogReader) ([]string, error) {
	var ids []string
	seen := map[string]struct{}{}
	for id, err := range Offers(ctx, reader, "") {
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
