package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Generate builds the OpenAPI 3.1 document for the Vitrine API. The route
// table is fixed, so the document is assembled once at startup and served
// as-is.
func Generate(baseURL, version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Vitrine API",
			Description: "Marketing-site gateway: public content reads, newsletter, contact form, and the authenticated admin surface.",
			Version:     version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	doc.Paths = openapi3.NewPaths()

	addSchemas(doc)
	addPublicPaths(doc)
	addAdminPaths(doc)

	return doc
}

// ---------------------------------------------------------------------------
// Component schemas
// ---------------------------------------------------------------------------

func addSchemas(doc *openapi3.T) {
	doc.Components.Schemas["ErrorResponse"] = objectSchema(map[string]*openapi3.SchemaRef{
		"error": objectSchema(map[string]*openapi3.SchemaRef{
			"code":    typed("integer", "int32"),
			"message": typed("string", ""),
		}),
	})

	doc.Components.Schemas["Session"] = objectSchema(map[string]*openapi3.SchemaRef{
		"token":          typed("string", ""),
		"email":          typed("string", "email"),
		"is_super_admin": typed("boolean", ""),
		"expires_in":     typed("integer", "int64"),
	})

	doc.Components.Schemas["Banner"] = objectSchema(map[string]*openapi3.SchemaRef{
		"id":         typed("integer", "int64"),
		"product":    typed("string", ""),
		"message":    typed("string", ""),
		"href":       typed("string", ""),
		"is_active":  typed("boolean", ""),
		"created_at": typed("string", "date-time"),
		"updated_at": typed("string", "date-time"),
	})

	doc.Components.Schemas["Post"] = objectSchema(map[string]*openapi3.SchemaRef{
		"id":           typed("integer", "int64"),
		"slug":         typed("string", ""),
		"title":        typed("string", ""),
		"body":         typed("string", ""),
		"cover_image":  typed("string", ""),
		"is_published": typed("boolean", ""),
		"published_at": typed("string", "date-time"),
		"created_at":   typed("string", "date-time"),
		"updated_at":   typed("string", "date-time"),
	})

	doc.Components.Schemas["Product"] = objectSchema(map[string]*openapi3.SchemaRef{
		"id":          typed("integer", "int64"),
		"name":        typed("string", ""),
		"tagline":     typed("string", ""),
		"description": typed("string", ""),
		"image":       typed("string", ""),
		"price_cents": typed("integer", "int64"),
		"is_visible":  typed("boolean", ""),
		"sort_order":  typed("integer", "int32"),
		"created_at":  typed("string", "date-time"),
		"updated_at":  typed("string", "date-time"),
	})

	doc.Components.Schemas["Admin"] = objectSchema(map[string]*openapi3.SchemaRef{
		"id":             typed("integer", "int64"),
		"email":          typed("string", "email"),
		"name":           typed("string", ""),
		"is_active":      typed("boolean", ""),
		"is_super_admin": typed("boolean", ""),
		"last_login_at":  typed("string", "date-time"),
		"created_at":     typed("string", "date-time"),
	})

	doc.Components.Schemas["Subscriber"] = objectSchema(map[string]*openapi3.SchemaRef{
		"id":           typed("integer", "int64"),
		"email":        typed("string", "email"),
		"is_confirmed": typed("boolean", ""),
		"created_at":   typed("string", "date-time"),
	})

	for _, name := range []string{"Banner", "Post", "Product", "Admin", "Subscriber"} {
		doc.Components.Schemas[name+"List"] = listSchema(name)
	}
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

func addPublicPaths(doc *openapi3.T) {
	doc.Paths.Set("/api/posts", &openapi3.PathItem{
		Get: listOp("Public", "listPosts", "List published posts", "PostList", pagingParams()),
	})
	doc.Paths.Set("/api/posts/{slug}", &openapi3.PathItem{
		Get: getOp("Public", "getPostBySlug", "Get a published post by slug", "Post",
			pathParam("slug", "string")),
	})
	doc.Paths.Set("/api/products", &openapi3.PathItem{
		Get: listOp("Public", "listVisibleProducts", "List visible products", "ProductList", nil),
	})
	doc.Paths.Set("/api/products/{id}", &openapi3.PathItem{
		Get: getOp("Public", "getVisibleProduct", "Get a visible product", "Product",
			pathParam("id", "integer")),
	})
	doc.Paths.Set("/api/banners/active", &openapi3.PathItem{
		Get: getOp("Public", "getActiveBanner", "Get the active banner, 404 when none", "Banner"),
	})
	doc.Paths.Set("/api/contact", &openapi3.PathItem{
		Post: bodyOp("Public", "sendContact", "Relay a contact-form message to the site owner",
			objectSchema(map[string]*openapi3.SchemaRef{
				"name":    typed("string", ""),
				"email":   typed("string", "email"),
				"subject": typed("string", ""),
				"message": typed("string", ""),
			}), "200", successSchema()),
	})
	doc.Paths.Set("/api/subscribe", &openapi3.PathItem{
		Post: bodyOp("Public", "subscribe", "Join the newsletter",
			objectSchema(map[string]*openapi3.SchemaRef{
				"email": typed("string", "email"),
			}), "201", successSchema()),
	})
	doc.Paths.Set("/api/unsubscribe/{token}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"Public"},
			OperationID: "unsubscribe",
			Summary:     "Remove a subscriber by unsubscribe token (HTML page)",
			Parameters:  openapi3.Parameters{pathParam("token", "string")},
			Responses:   htmlResponses(),
		},
	})
}

func addAdminPaths(doc *openapi3.T) {
	doc.Paths.Set("/api/admin/login", &openapi3.PathItem{
		Post: bodyOp("Auth", "login", "Authenticate an admin and issue a bearer token",
			objectSchema(map[string]*openapi3.SchemaRef{
				"email":    typed("string", "email"),
				"password": typed("string", "password"),
			}), "200", ref("Session")),
	})

	doc.Paths.Set("/api/admin/banners", &openapi3.PathItem{
		Get:  secured(listOp("Banners", "listBanners", "List all banners", "BannerList", nil)),
		Post: secured(bodyOp("Banners", "createBanner", "Create a banner; creating it active deactivates all others", bannerRequestSchema(), "201", ref("Banner"))),
	})
	doc.Paths.Set("/api/admin/banners/{id}", &openapi3.PathItem{
		Get:    secured(getOp("Banners", "getBanner", "Get a banner", "Banner", pathParam("id", "integer"))),
		Put:    secured(updateOp("Banners", "updateBanner", "Replace a banner's fields", bannerRequestSchema(), "Banner")),
		Delete: secured(deleteOp("Banners", "deleteBanner", "Delete a banner")),
	})
	doc.Paths.Set("/api/admin/banners/{id}/activate", &openapi3.PathItem{
		Post: secured(actionOp("Banners", "activateBanner", "Make this the single active banner", "Banner")),
	})
	doc.Paths.Set("/api/admin/banners/{id}/deactivate", &openapi3.PathItem{
		Post: secured(actionOp("Banners", "deactivateBanner", "Deactivate this banner only", "Banner")),
	})

	doc.Paths.Set("/api/admin/posts", &openapi3.PathItem{
		Get:  secured(listOp("Posts", "listAllPosts", "List all posts including drafts", "PostList", pagingParams())),
		Post: secured(bodyOp("Posts", "createPost", "Create a blog post", postRequestSchema(), "201", ref("Post"))),
	})
	doc.Paths.Set("/api/admin/posts/{id}", &openapi3.PathItem{
		Get:    secured(getOp("Posts", "getPost", "Get a post", "Post", pathParam("id", "integer"))),
		Put:    secured(updateOp("Posts", "updatePost", "Replace a post's fields", postRequestSchema(), "Post")),
		Delete: secured(deleteOp("Posts", "deletePost", "Delete a post")),
	})

	doc.Paths.Set("/api/admin/products", &openapi3.PathItem{
		Get:  secured(listOp("Products", "listAllProducts", "List all products including hidden", "ProductList", nil)),
		Post: secured(bodyOp("Products", "createProduct", "Create a product", productRequestSchema(), "201", ref("Product"))),
	})
	doc.Paths.Set("/api/admin/products/{id}", &openapi3.PathItem{
		Get:    secured(getOp("Products", "getProduct", "Get a product", "Product", pathParam("id", "integer"))),
		Put:    secured(updateOp("Products", "updateProduct", "Replace a product's fields", productRequestSchema(), "Product")),
		Delete: secured(deleteOp("Products", "deleteProduct", "Delete a product")),
	})

	doc.Paths.Set("/api/admin/subscribers", &openapi3.PathItem{
		Get: secured(listOp("Subscribers", "listSubscribers", "List newsletter subscribers", "SubscriberList", pagingParams())),
	})

	doc.Paths.Set("/api/admin/users", &openapi3.PathItem{
		Get: secured(listOp("Users", "listUsers", "List admin accounts (super admin only)", "AdminList", nil)),
		Post: secured(bodyOp("Users", "createUser", "Create a secondary admin account (super admin only)",
			objectSchema(map[string]*openapi3.SchemaRef{
				"email":    typed("string", "email"),
				"password": typed("string", "password"),
				"name":     typed("string", ""),
			}), "201", ref("Admin"))),
	})
	doc.Paths.Set("/api/admin/users/{id}", &openapi3.PathItem{
		Delete: secured(deleteOp("Users", "deleteUser", "Delete an admin account (super admin only)")),
	})

	doc.Paths.Set("/api/admin/uploads", &openapi3.PathItem{
		Post: secured(&openapi3.Operation{
			Tags:        []string{"Uploads"},
			OperationID: "uploadAsset",
			Summary:     "Upload an image asset, returns its public path",
			RequestBody: &openapi3.RequestBodyRef{
				Value: &openapi3.RequestBody{
					Required: true,
					Content: openapi3.Content{
						"multipart/form-data": &openapi3.MediaType{
							Schema: objectSchema(map[string]*openapi3.SchemaRef{
								"file": typed("string", "binary"),
							}),
						},
					},
				},
			},
			Responses: jsonResponses("201", objectSchema(map[string]*openapi3.SchemaRef{
				"path": typed("string", ""),
			})),
		}),
	})
}

// ---------------------------------------------------------------------------
// Builders
// ---------------------------------------------------------------------------

func typed(t, format string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{t}, Format: format}}
}

func objectSchema(props map[string]*openapi3.SchemaRef) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: props,
	}}
}

func ref(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name}
}

func listSchema(record string) *openapi3.SchemaRef {
	return objectSchema(map[string]*openapi3.SchemaRef{
		"resource": {Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: ref(record),
		}},
		"meta": objectSchema(map[string]*openapi3.SchemaRef{
			"count":  typed("integer", "int32"),
			"total":  typed("integer", "int64"),
			"limit":  typed("integer", "int32"),
			"offset": typed("integer", "int32"),
		}),
	})
}

func successSchema() *openapi3.SchemaRef {
	return objectSchema(map[string]*openapi3.SchemaRef{
		"success": typed("boolean", ""),
	})
}

func bannerRequestSchema() *openapi3.SchemaRef {
	return objectSchema(map[string]*openapi3.SchemaRef{
		"product":   typed("string", ""),
		"message":   typed("string", ""),
		"href":      typed("string", ""),
		"is_active": typed("boolean", ""),
	})
}

func postRequestSchema() *openapi3.SchemaRef {
	return objectSchema(map[string]*openapi3.SchemaRef{
		"slug":         typed("string", ""),
		"title":        typed("string", ""),
		"body":         typed("string", ""),
		"cover_image":  typed("string", ""),
		"is_published": typed("boolean", ""),
	})
}

func productRequestSchema() *openapi3.SchemaRef {
	return objectSchema(map[string]*openapi3.SchemaRef{
		"name":        typed("string", ""),
		"tagline":     typed("string", ""),
		"description": typed("string", ""),
		"image":       typed("string", ""),
		"price_cents": typed("integer", "int64"),
		"is_visible":  typed("boolean", ""),
		"sort_order":  typed("integer", "int32"),
	})
}

func pathParam(name, typ string) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: &openapi3.Parameter{
		Name:     name,
		In:       "path",
		Required: true,
		Schema:   typed(typ, ""),
	}}
}

func pagingParams() openapi3.Parameters {
	return openapi3.Parameters{
		{Value: &openapi3.Parameter{Name: "limit", In: "query", Schema: typed("integer", "int32")}},
		{Value: &openapi3.Parameter{Name: "offset", In: "query", Schema: typed("integer", "int32")}},
	}
}

func jsonResponses(status string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()
	desc := "Success"
	responses.Set(status, &openapi3.ResponseRef{Value: &openapi3.Response{
		Description: &desc,
		Content: openapi3.Content{
			"application/json": &openapi3.MediaType{Schema: schema},
		},
	}})
	errDesc := "Error"
	responses.Set("default", &openapi3.ResponseRef{Value: &openapi3.Response{
		Description: &errDesc,
		Content: openapi3.Content{
			"application/json": &openapi3.MediaType{Schema: ref("ErrorResponse")},
		},
	}})
	return responses
}

func htmlResponses() *openapi3.Responses {
	responses := openapi3.NewResponses()
	desc := "Confirmation page"
	responses.Set("200", &openapi3.ResponseRef{Value: &openapi3.Response{
		Description: &desc,
		Content: openapi3.Content{
			"text/html": &openapi3.MediaType{Schema: typed("string", "")},
		},
	}})
	return responses
}

func listOp(tag, id, summary, listRef string, params openapi3.Parameters) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		OperationID: id,
		Summary:     summary,
		Parameters:  params,
		Responses:   jsonResponses("200", ref(listRef)),
	}
}

func getOp(tag, id, summary, schemaRef string, params ...*openapi3.ParameterRef) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		OperationID: id,
		Summary:     summary,
		Parameters:  params,
		Responses:   jsonResponses("200", ref(schemaRef)),
	}
}

func bodyOp(tag, id, summary string, body *openapi3.SchemaRef, status string, result *openapi3.SchemaRef) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		OperationID: id,
		Summary:     summary,
		RequestBody: &openapi3.RequestBodyRef{
			Value: &openapi3.RequestBody{
				Required: true,
				Content: openapi3.Content{
					"application/json": &openapi3.MediaType{Schema: body},
				},
			},
		},
		Responses: jsonResponses(status, result),
	}
}

func updateOp(tag, id, summary string, body *openapi3.SchemaRef, schemaRef string) *openapi3.Operation {
	op := bodyOp(tag, id, summary, body, "200", ref(schemaRef))
	op.Parameters = openapi3.Parameters{pathParam("id", "integer")}
	return op
}

func actionOp(tag, id, summary, schemaRef string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		OperationID: id,
		Summary:     summary,
		Parameters:  openapi3.Parameters{pathParam("id", "integer")},
		Responses:   jsonResponses("200", ref(schemaRef)),
	}
}

func deleteOp(tag, id, summary string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		OperationID: id,
		Summary:     summary,
		Parameters:  openapi3.Parameters{pathParam("id", "integer")},
		Responses:   jsonResponses("200", successSchema()),
	}
}

func secured(op *openapi3.Operation) *openapi3.Operation {
	op.Security = &openapi3.SecurityRequirements{{"bearerAuth": {}}}
	return op
}
