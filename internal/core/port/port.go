package port

import (
	"context"
	"sync"

	"github.com/niksmo/dealspot/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// Inbound ports.

type ProductsSender interface {
	SendProducts(context.Context, []domain.Product) error
}

type ProductsSaver interface {
	SaveProducts(context.Context, []domain.Product) error
}

type DealsProvider interface {
	Home(context.Context) (domain.Home, error)
	SectionList(
		ctx context.Context, t domain.SectionType, store string,
	) (domain.SectionList, error)
	FilterProducts(
		context.Context, domain.FilterRequest,
	) (domain.FilterResult, error)
}

type SpotsProvider interface {
	Spot(context.Context, domain.SpotRequest) (domain.SpotFeed, error)
	FetchMore(context.Context, domain.SpotRequest) (bool, error)
}

type SavedSetter interface {
	SetSaved(context.Context, domain.SaveEvent) error
}

// Outbound ports.

type ProductsProducer interface {
	ProduceProducts(context.Context, []domain.Product) error
}

type ProductsStorage interface {
	StoreProducts(context.Context, []domain.Product) error
	ListProducts(
		ctx context.Context, order domain.ProductOrder, limit, offset int,
	) ([]domain.Product, error)
	ReadProducts(ctx context.Context, productIDs []string) ([]domain.Product, error)
}

type ProductPageLoader interface {
	LoadPage(context.Context, domain.PageRequest) (domain.Page, error)
}

type SavedEventEmitter interface {
	EmitSaveEvent(context.Context, domain.SaveEvent) error
}

type SavedReader interface {
	SavedProductIDs(ctx context.Context, username string) ([]string, error)
}

type SavedProductsProcessor interface {
	runnerContextWg
	closer
}
