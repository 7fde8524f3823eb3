package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"nutriapp/internal/domain"
	"nutriapp/internal/live"
	"nutriapp/internal/repository/sqlite"
	"nutriapp/internal/service"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestServer serves the catalog API over an in-memory repository
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})

	writer := service.NewWriter(16, 5*time.Second)
	writer.Start()
	t.Cleanup(writer.Close)

	svc := service.NewCatalogService(repo, live.NewRegistry(), writer, service.NewEventBus())

	mux := http.NewServeMux()
	NewCatalogHandler(svc).Register(mux)
	srv := httptest.NewServer(Chain(mux, Recover, CORS, Logger))
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assertNoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	assertNoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	assertNoError(t, err)
	t.Cleanup(func() {
		resp.Body.Close()
	})
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d (body: %s)", resp.StatusCode, want, body)
	}
}

func createIngredient(t *testing.T, srv *httptest.Server, name string, calories int) domain.Ingredient {
	t.Helper()
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/ingredients", domain.Ingredient{Name: name, Calories: calories})
	assertStatus(t, resp, http.StatusCreated)
	var ing domain.Ingredient
	decode(t, resp, &ing)
	if ing.ID == 0 {
		t.Fatalf("created ingredient %s has no id", name)
	}
	return ing
}

// ============================================================================
// Ingredient Tests
// ============================================================================

func TestIngredientLifecycle(t *testing.T) {
	srv := newTestServer(t)

	onion := createIngredient(t, srv, "onion", 40)
	createIngredient(t, srv, "Oregano", 265)
	createIngredient(t, srv, "garlic", 149)

	t.Run("get", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, srv.URL+"/api/ingredients/"+itoa(onion.ID), nil)
		assertStatus(t, resp, http.StatusOK)
		var got domain.Ingredient
		decode(t, resp, &got)
		assertEqual(t, got, onion)
	})

	t.Run("list", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, srv.URL+"/api/ingredients", nil)
		assertStatus(t, resp, http.StatusOK)
		var got []domain.Ingredient
		decode(t, resp, &got)
		assertEqual(t, len(got), 3)
	})

	t.Run("prefix ignores case", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, srv.URL+"/api/ingredients?prefix=o", nil)
		assertStatus(t, resp, http.StatusOK)
		var got []domain.Ingredient
		decode(t, resp, &got)
		assertEqual(t, len(got), 2)
	})

	t.Run("update", func(t *testing.T) {
		resp := doRequest(t, http.MethodPut, srv.URL+"/api/ingredients/"+itoa(onion.ID),
			domain.Ingredient{Name: "red onion", Calories: 42})
		assertStatus(t, resp, http.StatusOK)

		resp = doRequest(t, http.MethodGet, srv.URL+"/api/ingredients/"+itoa(onion.ID), nil)
		var got domain.Ingredient
		decode(t, resp, &got)
		assertEqual(t, got.Name, "red onion")
		assertEqual(t, got.Calories, 42)
	})

	t.Run("delete", func(t *testing.T) {
		resp := doRequest(t, http.MethodDelete, srv.URL+"/api/ingredients/"+itoa(onion.ID), nil)
		assertStatus(t, resp, http.StatusNoContent)

		resp = doRequest(t, http.MethodGet, srv.URL+"/api/ingredients/"+itoa(onion.ID), nil)
		assertStatus(t, resp, http.StatusNotFound)
	})
}

func TestIngredientErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"missing", http.MethodGet, "/api/ingredients/999", nil, http.StatusNotFound},
		{"non-numeric id", http.MethodGet, "/api/ingredients/abc", nil, http.StatusBadRequest},
		{"zero id", http.MethodDelete, "/api/ingredients/0", nil, http.StatusBadRequest},
		{"empty name", http.MethodPost, "/api/ingredients", domain.Ingredient{Calories: 10}, http.StatusBadRequest},
		{"update missing", http.MethodPut, "/api/ingredients/999", domain.Ingredient{Name: "x"}, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/ingredients/999", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, tt.method, srv.URL+tt.path, tt.body)
			assertStatus(t, resp, tt.status)
			var errResp ErrorResponse
			decode(t, resp, &errResp)
			if errResp.Error == "" {
				t.Error("expected error message in response")
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/ingredients", "application/json", strings.NewReader("{"))
		assertNoError(t, err)
		defer resp.Body.Close()
		assertStatus(t, resp, http.StatusBadRequest)
	})
}

func TestWriteWithoutWaiting(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/ingredients?wait=false", domain.Ingredient{Name: "leek"})
	assertStatus(t, resp, http.StatusAccepted)
	var op OperationResponse
	decode(t, resp, &op)
	assertEqual(t, op.Operation, "insert_ingredient")
	if op.Result.State == service.Failure {
		t.Fatalf("queued insert reported failure: %s", op.Result.Message)
	}

	// The write lands eventually
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp := doRequest(t, http.MethodGet, srv.URL+"/api/ingredients", nil)
		var got []domain.Ingredient
		decode(t, resp, &got)
		if len(got) == 1 {
			assertEqual(t, got[0].Name, "leek")
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("queued insert never committed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// ============================================================================
// Recipe Tests
// ============================================================================

func TestRecipeLifecycle(t *testing.T) {
	srv := newTestServer(t)
	onion := createIngredient(t, srv, "onion", 40)
	butter := createIngredient(t, srv, "butter", 717)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/recipes", SaveRecipeRequest{
		Recipe: domain.Recipe{Name: "soup", Steps: "simmer", ImageURI: "file:///soup.png"},
		Ingredients: []domain.IngredientQuantity{
			{IngredientID: onion.ID, Quantity: "2"},
			{IngredientID: butter.ID, Quantity: "30 g"},
		},
	})
	assertStatus(t, resp, http.StatusCreated)
	var recipe domain.Recipe
	decode(t, resp, &recipe)
	base := srv.URL + "/api/recipes/" + itoa(recipe.ID)

	t.Run("ingredients in insertion order", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, base+"/ingredients", nil)
		assertStatus(t, resp, http.StatusOK)
		var items []domain.IngredientWithQuantity
		decode(t, resp, &items)
		if len(items) != 2 {
			t.Fatalf("expected 2 ingredients, got %d", len(items))
		}
		assertEqual(t, items[0].Ingredient.Name, "onion")
		assertEqual(t, items[1].Quantity, "30 g")
	})

	t.Run("image", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, base+"/image", nil)
		assertStatus(t, resp, http.StatusOK)
		var img ImageResponse
		decode(t, resp, &img)
		assertEqual(t, img.ImageURI, "file:///soup.png")
	})

	t.Run("referenced ingredient cannot be deleted", func(t *testing.T) {
		resp := doRequest(t, http.MethodDelete, srv.URL+"/api/ingredients/"+itoa(butter.ID), nil)
		assertStatus(t, resp, http.StatusConflict)
	})

	t.Run("update replaces the ingredient list", func(t *testing.T) {
		resp := doRequest(t, http.MethodPut, base, SaveRecipeRequest{
			Recipe:      domain.Recipe{Name: "onion soup", Steps: "simmer longer"},
			Ingredients: []domain.IngredientQuantity{{IngredientID: onion.ID, Quantity: "4"}},
		})
		assertStatus(t, resp, http.StatusOK)

		resp = doRequest(t, http.MethodGet, base+"/ingredients", nil)
		var items []domain.IngredientWithQuantity
		decode(t, resp, &items)
		assertEqual(t, len(items), 1)

		resp = doRequest(t, http.MethodGet, base, nil)
		var got domain.Recipe
		decode(t, resp, &got)
		assertEqual(t, got.ID, recipe.ID)
		assertEqual(t, got.Name, "onion soup")
	})

	t.Run("add and remove a line", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, base+"/ingredients",
			domain.IngredientQuantity{IngredientID: butter.ID, Quantity: "1 tbsp"})
		assertStatus(t, resp, http.StatusCreated)

		resp = doRequest(t, http.MethodPost, base+"/ingredients",
			domain.IngredientQuantity{IngredientID: butter.ID, Quantity: "again"})
		assertStatus(t, resp, http.StatusConflict)

		resp = doRequest(t, http.MethodDelete, base+"/ingredients/"+itoa(butter.ID), nil)
		assertStatus(t, resp, http.StatusNoContent)
	})

	t.Run("save with unknown ingredient fails whole", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, srv.URL+"/api/recipes", SaveRecipeRequest{
			Recipe:      domain.Recipe{Name: "ghost"},
			Ingredients: []domain.IngredientQuantity{{IngredientID: 999, Quantity: "1"}},
		})
		assertStatus(t, resp, http.StatusConflict)

		resp = doRequest(t, http.MethodGet, srv.URL+"/api/recipes", nil)
		var recipes []domain.Recipe
		decode(t, resp, &recipes)
		assertEqual(t, len(recipes), 1)
	})

	t.Run("delete cascades", func(t *testing.T) {
		resp := doRequest(t, http.MethodDelete, base, nil)
		assertStatus(t, resp, http.StatusNoContent)

		resp = doRequest(t, http.MethodGet, base+"/ingredients", nil)
		var items []domain.IngredientWithQuantity
		decode(t, resp, &items)
		assertEqual(t, len(items), 0)

		resp = doRequest(t, http.MethodDelete, srv.URL+"/api/ingredients/"+itoa(butter.ID), nil)
		assertStatus(t, resp, http.StatusNoContent)
	})
}

// ============================================================================
// Import/Export Tests
// ============================================================================

func TestImportExport(t *testing.T) {
	srv := newTestServer(t)

	yamlDoc := `
ingredients:
  - name: onion
    calories: 40
recipes:
  - name: soup
    steps: simmer
    ingredients:
      - ingredient: onion
        quantity: "2"
`
	resp, err := http.Post(srv.URL+"/api/import/yaml", "application/yaml", strings.NewReader(yamlDoc))
	assertNoError(t, err)
	defer resp.Body.Close()
	assertStatus(t, resp, http.StatusOK)
	var result service.ImportResult
	decode(t, resp, &result)
	assertEqual(t, result.IngredientsCreated, 1)
	assertEqual(t, result.RecipesCreated, 1)

	t.Run("export json", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, srv.URL+"/api/export/json", nil)
		assertStatus(t, resp, http.StatusOK)
		assertEqual(t, resp.Header.Get("Content-Disposition"), "attachment; filename=catalog.json")
		body, err := io.ReadAll(resp.Body)
		assertNoError(t, err)
		if !strings.Contains(string(body), `"soup"`) {
			t.Errorf("export missing recipe: %s", body)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, srv.URL+"/api/export/xml", nil)
		assertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("unknown ingredient reference", func(t *testing.T) {
		doc := `{"recipes":[{"name":"stew","steps":"","ingredients":[{"ingredient":"beef","quantity":"1"}]}]}`
		resp, err := http.Post(srv.URL+"/api/import/json", "application/json", strings.NewReader(doc))
		assertNoError(t, err)
		defer resp.Body.Close()
		assertStatus(t, resp, http.StatusConflict)
	})
}

// ============================================================================
// Live Query Tests
// ============================================================================

// readSnapshot reads SSE lines until the next data line
func readSnapshot(t *testing.T, lines <-chan string) []domain.Ingredient {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("stream closed")
			}
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var event SnapshotEvent[[]domain.Ingredient]
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
				t.Fatalf("bad snapshot %q: %v", line, err)
			}
			return event.Value
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestLiveIngredients(t *testing.T) {
	srv := newTestServer(t)
	createIngredient(t, srv, "onion", 40)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/live/ingredients?prefix=on", nil)
	assertNoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	assertNoError(t, err)
	defer resp.Body.Close()
	assertStatus(t, resp, http.StatusOK)
	assertEqual(t, resp.Header.Get("Content-Type"), "text/event-stream")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	first := readSnapshot(t, lines)
	assertEqual(t, len(first), 1)

	createIngredient(t, srv, "Onion powder", 341)
	createIngredient(t, srv, "garlic", 149)

	// Coalescing may merge both inserts into one snapshot
	for {
		snap := readSnapshot(t, lines)
		if len(snap) == 2 {
			assertEqual(t, snap[1].Name, "Onion powder")
			return
		}
	}
}

// ============================================================================
// Middleware Tests
// ============================================================================

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assertEqual(t, strings.Join(order, ","), "a,b")
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assertEqual(t, rec.Code, http.StatusInternalServerError)
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/recipes", nil))

	assertEqual(t, rec.Code, http.StatusNoContent)
	assertEqual(t, rec.Header().Get("Access-Control-Allow-Origin"), "*")
	assertEqual(t, called, false)
}

func TestLoggerKeepsFlusher(t *testing.T) {
	flushed := false
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Error("logged writer does not implement http.Flusher")
			return
		}
		w.WriteHeader(http.StatusTeapot)
		f.Flush()
		flushed = true
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assertEqual(t, flushed, true)
	assertEqual(t, rec.Code, http.StatusTeapot)
	assertEqual(t, rec.Flushed, true)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrInvalid, http.StatusBadRequest},
		{domain.ErrDuplicate, http.StatusConflict},
		{domain.ErrReferenced, http.StatusConflict},
		{domain.ErrMissingReference, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assertEqual(t, statusFor(tt.err), tt.want)
		})
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
