package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moebelhaus/shop-backend/repository"
)

type categoryRequest struct {
	Name         string  `json:"name" binding:"required,max=255"`
	Slug         string  `json:"slug" binding:"max=255"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"imageUrl" binding:"omitempty,max=512"`
	ParentID     *uint   `json:"parentId"`
	DisplayOrder int     `json:"displayOrder"`
	IsActive     *bool   `json:"isActive"`
}

type categoryUpdateRequest struct {
	Name         *string `json:"name" binding:"omitempty,max=255"`
	Slug         *string `json:"slug" binding:"omitempty,max=255"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"imageUrl" binding:"omitempty,max=512"`
	ParentID     *uint   `json:"parentId"`
	ClearParent  bool    `json:"clearParent"`
	DisplayOrder *int    `json:"displayOrder"`
	IsActive     *bool   `json:"isActive"`
}

// 查詢分類列表
func (h *Handler) GetCategoryListHandler(c *gin.Context) {
	categories, err := h.Store.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, "無法讀取分類列表", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "成功查詢分類列表",
		"categories": categories,
	})
}

// 查詢主分類
func (h *Handler) GetMainCategoriesHandler(c *gin.Context) {
	categories, err := h.Store.ListMainCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, "無法讀取主分類", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "成功查詢主分類",
		"categories": categories,
	})
}

// 查詢子分類
func (h *Handler) GetSubcategoriesHandler(c *gin.Context) {
	parentID, ok := h.paramID(c, "categoryID")
	if !ok {
		return
	}
	categories, err := h.Store.ListSubcategories(c.Request.Context(), parentID)
	if err != nil {
		h.respondError(c, "無法讀取子分類", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "成功查詢子分類",
		"categories": categories,
	})
}

// 查詢分類詳細資料
func (h *Handler) GetCategoryDataHandler(c *gin.Context) {
	categoryID, ok := h.paramID(c, "categoryID")
	if !ok {
		return
	}
	category, err := h.Store.GetCategoryByID(c.Request.Context(), categoryID)
	if err != nil {
		h.respondError(c, "查詢分類失敗", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "成功查詢分類",
		"category": category,
	})
}

func (h *Handler) GetCategoryBySlugHandler(c *gin.Context) {
	category, err := h.Store.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, "查詢分類失敗", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "成功查詢分類",
		"category": category,
	})
}

// 新增分類
func (h *Handler) CreateCategoryHandler(c *gin.Context) {
	var req categoryRequest
	if !h.bindJSON(c, "分類資料格式錯誤", &req) {
		return
	}

	category, err := h.Store.CreateCategory(c.Request.Context(), repository.CategoryInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		ParentID:     req.ParentID,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		h.respondError(c, "新增分類失敗", err)
		return
	}
	h.audit(c, "category.create", "category", category.ID, req)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "成功新增分類",
		"category": category,
	})
}

// 修改分類
func (h *Handler) UpdateCategoryHandler(c *gin.Context) {
	categoryID, ok := h.paramID(c, "categoryID")
	if !ok {
		return
	}
	var req categoryUpdateRequest
	if !h.bindJSON(c, "分類資料格式錯誤", &req) {
		return
	}

	category, err := h.Store.UpdateCategory(c.Request.Context(), categoryID, repository.CategoryUpdate{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		ParentID:     req.ParentID,
		ClearParent:  req.ClearParent,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		h.respondError(c, "修改分類失敗", err)
		return
	}
	h.audit(c, "category.update", "category", category.ID, req)

	c.JSON(http.StatusOK, gin.H{
		"message":  "成功修改分類",
		"category": category,
	})
}

// 刪除分類，仍有子分類或商品時回傳 409
func (h *Handler) DeleteCategoryHandler(c *gin.Context) {
	categoryID, ok := h.paramID(c, "categoryID")
	if !ok {
		return
	}
	if err := h.Store.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		h.respondError(c, "刪除分類失敗", err)
		return
	}
	h.audit(c, "category.delete", "category", categoryID, nil)

	c.JSON(http.StatusOK, gin.H{
		"message": "成功刪除分類",
	})
}
