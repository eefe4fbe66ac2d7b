package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/utils"
)

// RoomsController serves the room and building catalog.
type RoomsController struct {
	roomRepo repositories.RoomRepository
	bldgRepo repositories.BuildingRepository
}

func NewRoomsController(roomRepo repositories.RoomRepository, bldgRepo repositories.BuildingRepository) *RoomsController {
	return &RoomsController{roomRepo: roomRepo, bldgRepo: bldgRepo}
}

// ListRoomsHandler => GET /api/v1/rooms?building_id=&gender_restriction=&is_full=
func (c *RoomsController) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.RoomFilter

	if raw := r.URL.Query().Get("building_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid building_id", nil, err)
			return
		}
		filter.BuildingID = &id
	}
	if raw := r.URL.Query().Get("gender_restriction"); raw != "" {
		g := models.GenderType(raw)
		filter.GenderRestriction = &g
	}
	if raw := r.URL.Query().Get("is_full"); raw != "" {
		full, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid is_full", nil, err)
			return
		}
		filter.IsFull = &full
	}

	rooms, err := c.roomRepo.List(r.Context(), filter)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list rooms", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rooms)
}

// GetRoomHandler => GET /api/v1/rooms/{id}
func (c *RoomsController) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid room id", nil, err)
		return
	}

	room, err := c.roomRepo.GetByID(r.Context(), id)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load room", nil, err)
		return
	}
	if room == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Room not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, room)
}

// ListBuildingsHandler => GET /api/v1/buildings
func (c *RoomsController) ListBuildingsHandler(w http.ResponseWriter, r *http.Request) {
	buildings, err := c.bldgRepo.ListAll(r.Context())
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list buildings", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, buildings)
}
