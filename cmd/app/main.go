// @title DMC Adapter API
// @version 1.0.0
// @description API для управления контроллером движения Galil DMC и трансляции его состояния.
// @host localhost:8082
// @BasePath /api/v1
package main

import "github.com/iwtcode/dmcAdapter/internal/app"

func main() {
	// Создаем и запускаем новый экземпляр приложения fx
	app.New().Run()
}
