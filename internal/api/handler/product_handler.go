package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	productService service.IProductService
}

func NewProductHandler(productService service.IProductService) *ProductHandler {
	if productService == nil {
		panic("productService cannot be nil")
	}
	return &ProductHandler{productService: productService}
}

// @Summary list products
// @Tags product
// @Produce json
// @Success 200 {object} response.Response "products"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /product/list [get]
func (p *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := p.productService.ListProducts(r.Context())
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "", response.Fields{"products": products})
}

// @Summary get product
// @Tags product
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} response.Response "product"
// @Failure 404 {object} response.Response "not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /product/{id} [get]
func (p *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := p.productService.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "", response.Fields{"product": product})
}

// @Summary add product
// @Tags product
// @Accept mpfd
// @Produce json
// @Param name formData string true "name"
// @Param price formData string true "price"
// @Param offerPrice formData string true "offer price"
// @Param stockQuantity formData int false "stock quantity"
// @Param images formData file true "images"
// @Param video formData file false "video"
// @Success 200 {object} response.Response "Upload successful"
// @Failure 400 {object} response.Response "invalid data"
// @Failure 403 {object} response.Response "not authorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /product/add [post]
func (p *ProductHandler) Add(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	form, err := parseMultipart(w, r)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	defer form.RemoveAll()

	input := service.ProductInput{
		Name:        formValue(form, "name"),
		Description: formValue(form, "description"),
		Category:    formValue(form, "category"),
		Brand:       formValue(form, "brand"),
		Subcategory: formValue(form, "subcategory"),
	}
	if input.Price, err = parseDecimal(form, "price"); err != nil {
		response.HandleError(w, r, err)
		return
	}
	if input.OfferPrice, err = parseDecimal(form, "offerPrice"); err != nil {
		response.HandleError(w, r, err)
		return
	}
	stock, err := parseOptionalInt(form, "stockQuantity")
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	if stock != nil {
		input.StockQuantity = *stock
	}

	files, closeFiles, err := openFiles(form, "images", "video")
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	defer closeFiles()
	input.Images = files["images"]
	if videos := files["video"]; len(videos) > 0 {
		input.Video = &videos[0]
	}

	product, err := p.productService.AddProduct(r.Context(), sellerID, input)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "Upload successful", response.Fields{"newProduct": product})
}

// @Summary list seller products
// @Tags product
// @Produce json
// @Param search query string false "search term"
// @Success 200 {object} response.Response "products and total"
// @Failure 403 {object} response.Response "not authorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /product/seller-list [get]
func (p *ProductHandler) SellerList(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	products, err := p.productService.ListSellerProducts(r.Context(), sellerID, r.URL.Query().Get("search"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "", response.Fields{"products": products, "total": len(products)})
}

// @Summary update seller product
// @Tags product
// @Accept mpfd
// @Produce json
// @Param productId formData string true "product id"
// @Param imagesToDelete formData []string false "image urls to remove"
// @Param deleteVideo formData bool false "remove videos"
// @Param images formData file false "new images"
// @Param video formData file false "replacement video"
// @Success 200 {object} response.Response "Product updated successfully"
// @Failure 400 {object} response.Response "invalid data"
// @Failure 403 {object} response.Response "not authorized"
// @Failure 404 {object} response.Response "not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /product/seller-list [put]
func (p *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	form, err := parseMultipart(w, r)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	defer form.RemoveAll()

	input := service.ProductUpdateInput{
		ProductID:      formValue(form, "productId"),
		Name:           optionalString(form, "name"),
		Description:    optionalString(form, "description"),
		Category:       optionalString(form, "category"),
		Brand:          optionalString(form, "brand"),
		Subcategory:    optionalString(form, "subcategory"),
		ImagesToDelete: formValues(form, "imagesToDelete"),
		DeleteVideo:    formValue(form, "deleteVideo") == "true",
	}
	if _, ok := form.Value["price"]; ok {
		price, err := parseDecimal(form, "price")
		if err != nil {
			response.HandleError(w, r, err)
			return
		}
		input.Price = &price
	}
	if _, ok := form.Value["offerPrice"]; ok {
		offerPrice, err := parseDecimal(form, "offerPrice")
		if err != nil {
			response.HandleError(w, r, err)
			return
		}
		input.OfferPrice = &offerPrice
	}
	if input.StockQuantity, err = parseOptionalInt(form, "stockQuantity"); err != nil {
		response.HandleError(w, r, err)
		return
	}

	files, closeFiles, err := openFiles(form, "images", "video")
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	defer closeFiles()
	input.NewImages = files["images"]
	if videos := files["video"]; len(videos) > 0 {
		input.NewVideo = &videos[0]
	}

	product, err := p.productService.UpdateProduct(r.Context(), sellerID, input)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "Product updated successfully", response.Fields{"product": product})
}

// @Summary delete seller product
// @Tags product
// @Produce json
// @Param id query string true "product id"
// @Success 200 {object} response.Response "Product deleted successfully"
// @Failure 403 {object} response.Response "not authorized"
// @Failure 404 {object} response.Response "not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /product/seller-list [delete]
func (p *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	if err := p.productService.DeleteProduct(r.Context(), sellerID, r.URL.Query().Get("id")); err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "Product deleted successfully", nil)
}

func parseMultipart(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("%w: malformed multipart form", service.ErrInvalidData)
	}
	return r.MultipartForm, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// formValues 同名欄位多值, 或單一欄位以逗號分隔
func formValues(form *multipart.Form, key string) []string {
	var out []string
	for _, k := range []string{key, key + "[]"} {
		for _, v := range form.Value[k] {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func optionalString(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	return &v
}

func parseDecimal(form *multipart.Form, key string) (decimal.Decimal, error) {
	raw := formValue(form, key)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: %s is required", service.ErrInvalidData, key)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", service.ErrInvalidData, key)
	}
	return d, nil
}

func parseOptionalInt(form *multipart.Form, key string) (*int, error) {
	raw := formValue(form, key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", service.ErrInvalidData, key)
	}
	return &n, nil
}

// openFiles 開啟表單內的檔案, 回傳的 close 需在 service 呼叫結束後執行
func openFiles(form *multipart.Form, keys ...string) (map[string][]service.MediaFile, func(), error) {
	var opened []io.Closer
	closeAll := func() {
		for _, c := range opened {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("close upload file failed")
			}
		}
	}

	out := make(map[string][]service.MediaFile, len(keys))
	for _, key := range keys {
		headers := make([]*multipart.FileHeader, 0, len(form.File[key])+len(form.File[key+"[]"]))
		headers = append(headers, form.File[key]...)
		headers = append(headers, form.File[key+"[]"]...)
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("%w: cannot read %s", service.ErrInvalidData, fh.Filename)
			}
			opened = append(opened, f)
			out[key] = append(out[key], service.MediaFile{Name: fh.Filename, Reader: f})
		}
	}
	return out, closeAll, nil
}
