package dmc_service

import (
	"strconv"
	"strings"
)

// tcMessages - таблица кодов ошибок команды TC контроллера DMC.
var tcMessages = map[int]string{
	0:  "No errors",
	1:  "Unrecognized Command",
	2:  "Command only valid from program",
	3:  "Command not valid in program",
	4:  "Operand error",
	5:  "Input buffer full",
	6:  "Number out of range",
	7:  "Command not valid while running",
	8:  "Command not valid while not running",
	9:  "Variable error",
	10: "Empty program line or undefined label",
	11: "Invalid label or line number",
	12: "Subroutine more than 16 deep",
	13: "Begin only valid when motor is off",
}

func tcErrorText(code int) string {
	if msg, ok := tcMessages[code]; ok {
		return msg
	}
	return "Unknown error code"
}

// parseNumberList разбирает ответ контроллера в список чисел.
// Нечисловые токены и переводы строк пропускаются.
func parseNumberList(s string) []float64 {
	replacer := strings.NewReplacer("\r", " ", "\n", " ", ",", " ")
	parts := strings.Fields(replacer.Replace(s))
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		if v, err := strconv.ParseFloat(p, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// parseErrorReply разбирает ответ на запрос TC1: ведущий код и, если
// контроллер его прислал, текст сообщения. Пустой текст берется из таблицы.
func parseErrorReply(resp string) (code int, message string) {
	fields := strings.Fields(strings.TrimSpace(resp))
	if len(fields) == 0 {
		return 0, ""
	}
	code, err := strconv.Atoi(fields[0])
	if err != nil {
		// Некоторые прошивки отвечают "<code> <text>" с дробным кодом.
		if f, ferr := strconv.ParseFloat(fields[0], 64); ferr == nil {
			code = int(f)
		} else {
			return 0, strings.TrimSpace(resp)
		}
	}
	if len(fields) > 1 {
		return code, strings.Join(fields[1:], " ")
	}
	return code, tcErrorText(code)
}
