package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/models"
	"github.com/rameshmuthu-dev/mobilemania-backend/services"
)

func newProductFixture(t *testing.T) (*services.ProductService, *memProductRepo) {
	t.Helper()
	productRepo := newMemProductRepo()
	return services.NewProductService(productRepo, zap.NewNop()), productRepo
}

func TestCreateProduct_Success(t *testing.T) {
	svc, _ := newProductFixture(t)

	product, svcErr := svc.CreateProduct(context.Background(), primitive.NewObjectID().Hex(), &services.CreateProductRequest{
		Name:         "Galaxy A55",
		Brand:        "Samsung",
		Description:  "Mid-range phone",
		Price:        1000,
		Images:       []string{"https://cdn.example.com/a55.jpg"},
		Category:     "mobiles",
		SubCategory:  "android",
		CountInStock: 10,
	})
	require.Nil(t, svcErr)
	assert.False(t, product.ID.IsZero())
	assert.Equal(t, 0.0, product.Rating)
	assert.Equal(t, 0, product.NumReviews)
}

func TestCreateProduct_DuplicateName(t *testing.T) {
	svc, productRepo := newProductFixture(t)
	productRepo.add(&models.Product{Name: "Galaxy A55", Price: 1000})

	_, svcErr := svc.CreateProduct(context.Background(), primitive.NewObjectID().Hex(), &services.CreateProductRequest{
		Name:        "Galaxy A55",
		Brand:       "Samsung",
		Description: "Dup",
		Price:       999,
		Images:      []string{"x"},
		Category:    "mobiles",
		SubCategory: "android",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
}

func TestUpdateProduct_PartialFields(t *testing.T) {
	svc, productRepo := newProductFixture(t)
	phone := productRepo.add(&models.Product{Name: "Pixel 8", Price: 700, CountInStock: 5})

	newPrice := 650.0
	updated, svcErr := svc.UpdateProduct(context.Background(), phone.ID.Hex(), &services.UpdateProductRequest{Price: &newPrice})
	require.Nil(t, svcErr)
	assert.Equal(t, 650.0, updated.Price)
	assert.Equal(t, "Pixel 8", updated.Name)
	assert.Equal(t, 5, updated.CountInStock)
}

func TestUpdateProduct_RejectsNonPositivePrice(t *testing.T) {
	svc, productRepo := newProductFixture(t)
	phone := productRepo.add(&models.Product{Name: "Pixel 8", Price: 700})

	bad := 0.0
	_, svcErr := svc.UpdateProduct(context.Background(), phone.ID.Hex(), &services.UpdateProductRequest{Price: &bad})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}

func TestUpdateProduct_NoFields(t *testing.T) {
	svc, productRepo := newProductFixture(t)
	phone := productRepo.add(&models.Product{Name: "Pixel 8", Price: 700})

	_, svcErr := svc.UpdateProduct(context.Background(), phone.ID.Hex(), &services.UpdateProductRequest{})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc, _ := newProductFixture(t)

	_, svcErr := svc.GetProductByID(context.Background(), primitive.NewObjectID().Hex())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)

	_, svcErr = svc.GetProductByID(context.Background(), "not-an-id")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}

func TestListProducts_FiltersAndMeta(t *testing.T) {
	svc, productRepo := newProductFixture(t)
	productRepo.add(&models.Product{Name: "Galaxy A55", Brand: "Samsung", Category: "mobiles", Price: 1000})
	productRepo.add(&models.Product{Name: "Galaxy Book", Brand: "Samsung", Category: "laptops", Price: 60000})
	productRepo.add(&models.Product{Name: "Pixel 8", Brand: "Google", Category: "mobiles", Price: 700})

	resp, svcErr := svc.ListProducts(context.Background(), &services.ProductListParams{Category: "mobiles", Page: 1, Limit: 10})
	require.Nil(t, svcErr)
	assert.Len(t, resp.Products, 2)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.False(t, resp.Meta.HasMore)

	resp, svcErr = svc.ListProducts(context.Background(), &services.ProductListParams{Search: "galaxy", Page: 1, Limit: 10})
	require.Nil(t, svcErr)
	assert.Len(t, resp.Products, 2)

	resp, svcErr = svc.ListProducts(context.Background(), &services.ProductListParams{MinPrice: 800, MaxPrice: 2000, Page: 1, Limit: 10})
	require.Nil(t, svcErr)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Galaxy A55", resp.Products[0].Name)
}

func TestDeleteProduct(t *testing.T) {
	svc, productRepo := newProductFixture(t)
	phone := productRepo.add(&models.Product{Name: "Pixel 8", Price: 700})

	require.Nil(t, svc.DeleteProduct(context.Background(), phone.ID.Hex()))

	svcErr := svc.DeleteProduct(context.Background(), phone.ID.Hex())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}
