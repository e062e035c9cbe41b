package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kayit.link/configs"
	"kayit.link/configs/configsdatabase"
	"kayit.link/configs/configslog"
	"kayit.link/routes"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
)

func main() {
	configs.LoadEnv()
	configslog.InitLogger()
	defer configslog.SyncLogger()

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()

	engine := html.New("./views", ".html")
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("join", strings.Join)

	app := fiber.New(fiber.Config{
		AppName:      "kayit.link",
		Views:        engine,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Static("/static", "./public")

	routes.SetupRoutes(app)

	addr := ":" + getPort()

	// Graceful shutdown: sinyal gelince yeni istek alınmaz, süren istekler
	// tamamlanır, sonra DB bağlantıları kapanır.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(addr); err != nil {
			configslog.Log.Fatal("Sunucu başlatılamadı", zap.String("addr", addr), zap.Error(err))
		}
	}()
	configslog.SLog.Infof("Sunucu %s adresinde dinliyor", addr)

	<-quit
	configslog.SLog.Info("Kapatma sinyali alındı, sunucu durduruluyor...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		configslog.Log.Error("Sunucu düzgün kapatılamadı", zap.Error(err))
	}
	configslog.SLog.Info("Sunucu durduruldu.")
}

func getPort() string {
	if port := os.Getenv("APP_PORT"); port != "" {
		return port
	}
	return "3000"
}
