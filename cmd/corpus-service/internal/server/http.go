package server

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"

	"corpushub/cmd/corpus-service/internal/service"
)

// Config HTTP服务器配置
type Config struct {
	Addr      string          `yaml:"addr"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// HTTPServer HTTP服务器
type HTTPServer struct {
	engine  *gin.Engine
	server  *http.Server
	service *service.CorpusService
	redis   *redis.Client
	cfg     *Config
	logger  log.Logger
	log     *log.Helper
}

// NewHTTPServer 创建HTTP服务器
func NewHTTPServer(
	srv *service.CorpusService,
	rdb *redis.Client,
	cfg *Config,
	logger log.Logger,
) *HTTPServer {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.Timeout <= 0 {
		// 查询最坏路径：3次重试×20秒间隔再加远端调用本身
		cfg.Timeout = 2 * time.Minute
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &HTTPServer{
		engine:  engine,
		service: srv,
		redis:   rdb,
		cfg:     cfg,
		logger:  logger,
		log:     log.NewHelper(log.With(logger, "module", "server")),
	}

	s.registerMiddleware()
	s.registerRoutes()

	s.server = &http.Server{
		Addr:    cfg.Addr,
		Handler: engine,
	}
	return s
}

// Start 启动服务器，实现kratos transport.Server
func (s *HTTPServer) Start(ctx context.Context) error {
	s.log.Infof("HTTP server listening on %s", s.cfg.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 优雅停机，实现kratos transport.Server
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.log.Info("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}

// registerMiddleware 注册全局中间件
func (s *HTTPServer) registerMiddleware() {
	s.engine.Use(RecoveryMiddleware(s.logger))
	s.engine.Use(CORSMiddleware())
	s.engine.Use(LoggingMiddleware(s.logger))
	s.engine.Use(TimeoutMiddleware(s.cfg.Timeout))
}

// registerRoutes 注册路由
func (s *HTTPServer) registerRoutes() {
	// 健康检查不走认证与限流
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := s.engine.Group("/api/v1")
	api.Use(AuthMiddleware())
	api.Use(RateLimitMiddleware(s.redis, s.cfg.RateLimit))

	corpora := api.Group("/corpora")
	{
		corpora.POST("", s.createCorpus)
		corpora.GET("", s.listAccessibleCorpora)
		corpora.GET("/all", s.listAllCorpora)
		corpora.PUT("/:id", s.updateCorpus)
		corpora.DELETE("/:id", s.deleteCorpus)
		corpora.POST("/:id/share", s.shareCorpus)
		corpora.POST("/:id/query", s.query)

		corpora.POST("/:id/documents", s.uploadDocument)
		corpora.GET("/:id/documents", s.listDocuments)
		corpora.DELETE("/:id/documents/:surrogate_id", s.deleteDocument)
	}

	// 不指定语料库的上传，落到最近创建（或自动创建）的语料库
	api.POST("/documents", s.uploadDocument)

	friends := api.Group("/friends")
	{
		friends.POST("", s.addFriend)
		friends.POST("/:id/accept", s.acceptFriend)
	}
}

func (s *HTTPServer) createCorpus(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Visibility  string `json:"visibility"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := s.service.CreateCorpus(c.Request.Context(), &service.CreateCorpusRequest{
		UserID:      c.GetString("user_id"),
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, resp)
}

func (s *HTTPServer) listAccessibleCorpora(c *gin.Context) {
	resp, err := s.service.ListAccessibleCorpora(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, resp)
}

func (s *HTTPServer) listAllCorpora(c *gin.Context) {
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	resp, err := s.service.ListAllCorpora(c.Request.Context(), pageSize)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, resp)
}

func (s *HTTPServer) updateCorpus(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Visibility  string `json:"visibility"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := s.service.UpdateCorpus(c.Request.Context(), &service.UpdateCorpusRequest{
		UserID:      c.GetString("user_id"),
		CorpusID:    c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, resp)
}

func (s *HTTPServer) deleteCorpus(c *gin.Context) {
	resp, err := s.service.DeleteCorpus(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, resp)
}

func (s *HTTPServer) shareCorpus(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := s.service.ShareCorpus(c.Request.Context(), &service.ShareCorpusRequest{
		OwnerID:        c.GetString("user_id"),
		CorpusID:       c.Param("id"),
		TargetUsername: req.Username,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, resp)
}

func (s *HTTPServer) query(c *gin.Context) {
	var req struct {
		Question string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := s.service.Query(c.Request.Context(), &service.QueryRequest{
		UserID:   c.GetString("user_id"),
		CorpusID: c.Param("id"),
		Question: req.Question,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, resp)
}

func (s *HTTPServer) uploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing multipart field: file")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		Error(c, err)
		return
	}

	resp, err := s.service.UploadDocument(c.Request.Context(), &service.UploadDocumentRequest{
		UserID:   c.GetString("user_id"),
		CorpusID: c.Param("id"), // /api/v1/documents路径下为空
		FileName: fileHeader.Filename,
		Content:  content,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, resp)
}

func (s *HTTPServer) listDocuments(c *gin.Context) {
	resp, err := s.service.ListDocuments(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, resp)
}

func (s *HTTPServer) deleteDocument(c *gin.Context) {
	surrogateID, err := strconv.ParseInt(c.Param("surrogate_id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid surrogate id")
		return
	}

	if err := s.service.DeleteDocument(c.Request.Context(), c.GetString("user_id"), c.Param("id"), surrogateID); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

func (s *HTTPServer) addFriend(c *gin.Context) {
	var req struct {
		FriendID string `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := s.service.AddFriend(c.Request.Context(), c.GetString("user_id"), req.FriendID); err != nil {
		Error(c, err)
		return
	}
	Created(c, gin.H{"status": "pending"})
}

func (s *HTTPServer) acceptFriend(c *gin.Context) {
	if err := s.service.AcceptFriend(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"status": "accepted"})
}
