package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/naveenspark/nksadmin/pkg/domain"
)

// Attachment is a finished binary upload, e.g. a cropped product image.
type Attachment struct {
	Filename string
	Content  io.Reader
}

// CategoryDraft is the payload for creating or updating a category.
// With an Image it is sent as multipart/form-data, otherwise as JSON.
type CategoryDraft struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Slug        string      `json:"slug,omitempty"`
	Image       *Attachment `json:"-"`
}

func (d CategoryDraft) fields() url.Values {
	v := url.Values{}
	v.Set("title", d.Title)
	v.Set("description", d.Description)
	if d.Slug != "" {
		v.Set("slug", d.Slug)
	}
	return v
}

// ProductDraft is the payload for creating or updating a product.
type ProductDraft struct {
	Title         string       `json:"title"`
	Price         float64      `json:"price"`
	RetailerPrice float64      `json:"retailerPrice"`
	Stock         int          `json:"stock"`
	Category      string       `json:"category"`
	Description   string       `json:"description,omitempty"`
	AboutProduct  string       `json:"aboutProduct,omitempty"`
	IsFeatured    bool         `json:"isFeatured"`
	IsTrending    bool         `json:"isTrending"`
	Images        []Attachment `json:"-"`
}

func (d ProductDraft) fields() url.Values {
	v := url.Values{}
	v.Set("title", d.Title)
	v.Set("price", strconv.FormatFloat(d.Price, 'f', -1, 64))
	v.Set("retailerPrice", strconv.FormatFloat(d.RetailerPrice, 'f', -1, 64))
	v.Set("stock", strconv.Itoa(d.Stock))
	v.Set("category", d.Category)
	v.Set("description", d.Description)
	v.Set("aboutProduct", d.AboutProduct)
	v.Set("isFeatured", strconv.FormatBool(d.IsFeatured))
	v.Set("isTrending", strconv.FormatBool(d.IsTrending))
	return v
}

// --- Categories ---

// ListCategories returns all categories.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := c.get(ctx, "/categories", "categories", &cats); err != nil {
		return nil, fmt.Errorf("client.ListCategories: %w", err)
	}
	return cats, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, d CategoryDraft) (*domain.Category, error) {
	var created domain.Category
	if err := c.sendDraft(ctx, http.MethodPost, "/categories", d, d.fields(), "image", attachments(d.Image), "category", &created); err != nil {
		return nil, fmt.Errorf("client.CreateCategory: %w", err)
	}
	return &created, nil
}

// UpdateCategory replaces a category's fields.
func (c *Client) UpdateCategory(ctx context.Context, id string, d CategoryDraft) (*domain.Category, error) {
	var updated domain.Category
	if err := c.sendDraft(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), d, d.fields(), "image", attachments(d.Image), "category", &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateCategory: %w", err)
	}
	return &updated, nil
}

// DeleteCategory deletes a category by ID.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, "", nil); err != nil {
		return fmt.Errorf("client.DeleteCategory: %w", err)
	}
	return nil
}

// --- Products ---

// ListProducts returns products, optionally restricted to one category.
func (c *Client) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	path := "/products"
	if category != "" {
		params := url.Values{}
		params.Set("category", category)
		path += "?" + params.Encode()
	}
	var products []domain.Product
	if err := c.get(ctx, path, "products", &products); err != nil {
		return nil, fmt.Errorf("client.ListProducts: %w", err)
	}
	return products, nil
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, d ProductDraft) (*domain.Product, error) {
	var created domain.Product
	if err := c.sendDraft(ctx, http.MethodPost, "/products", d, d.fields(), "images", d.Images, "product", &created); err != nil {
		return nil, fmt.Errorf("client.CreateProduct: %w", err)
	}
	return &created, nil
}

// UpdateProduct replaces a product's fields.
func (c *Client) UpdateProduct(ctx context.Context, id string, d ProductDraft) (*domain.Product, error) {
	var updated domain.Product
	if err := c.sendDraft(ctx, http.MethodPut, "/products/"+url.PathEscape(id), d, d.fields(), "images", d.Images, "product", &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateProduct: %w", err)
	}
	return &updated, nil
}

// DeleteProduct deletes a product by ID.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, "", nil); err != nil {
		return fmt.Errorf("client.DeleteProduct: %w", err)
	}
	return nil
}

func attachments(a *Attachment) []Attachment {
	if a == nil {
		return nil
	}
	return []Attachment{*a}
}

// sendDraft posts body as JSON, or as multipart form data when files are attached.
func (c *Client) sendDraft(ctx context.Context, method, path string, body any, fields url.Values, fileField string, files []Attachment, envelope string, out any) error {
	if len(files) == 0 {
		return c.doRequest(ctx, method, path, body, envelope, out)
	}
	buf, contentType, err := encodeMultipart(fields, fileField, files)
	if err != nil {
		return err
	}
	header := http.Header{}
	header.Set("Content-Type", contentType)
	return c.do(ctx, method, path, buf, header, envelope, out)
}

func encodeMultipart(fields url.Values, fileField string, files []Attachment) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", k, err)
			}
		}
	}
	for i, f := range files {
		name := f.Filename
		if name == "" {
			name = fmt.Sprintf("%s-%d.jpg", fileField, i)
		}
		part, err := w.CreateFormFile(fileField, name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file: %w", err)
		}
		if f.Content != nil {
			if _, err := io.Copy(part, f.Content); err != nil {
				return nil, "", fmt.Errorf("copy %s: %w", name, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
